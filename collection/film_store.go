package collection

// FilmStore persists films in the film table.
type FilmStore struct {
	sqlStore[Film]
}

var _ EntityStore[Film] = (*FilmStore)(nil)

func NewFilmStore(db *Database) *FilmStore {
	return &FilmStore{sqlStore[Film]{db: db, m: filmMapping}}
}

var filmMapping = mapping[Film]{
	table:   "film",
	columns: []string{"title", "genre", "year", "description", "director"},
	id:      func(f *Film) *int64 { return &f.ID },
	values: func(f *Film) []any {
		return []any{f.Title, f.Genre, f.Year, f.Description, f.Director}
	},
	fields: func(f *Film) []any {
		return []any{&f.Title, &f.Genre, &f.Year, &f.Description, &f.Director}
	},
}
