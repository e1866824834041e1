package collection

import "context"

// CopyStore persists film copies in the copy table.
type CopyStore struct {
	sqlStore[CopyFilm]
}

var _ EntityStore[CopyFilm] = (*CopyStore)(nil)

func NewCopyStore(db *Database) *CopyStore {
	return &CopyStore{sqlStore[CopyFilm]{db: db, m: copyMapping}}
}

var copyMapping = mapping[CopyFilm]{
	table:   "copy",
	columns: []string{"condition", "support", "film_id", "user_id"},
	id:      func(c *CopyFilm) *int64 { return &c.ID },
	values: func(c *CopyFilm) []any {
		return []any{c.Condition, c.Support, c.FilmID, c.UserID}
	},
	fields: func(c *CopyFilm) []any {
		return []any{&c.Condition, &c.Support, &c.FilmID, &c.UserID}
	},
}

// GetByOwner returns every copy whose user_id equals userID.
func (s *CopyStore) GetByOwner(ctx context.Context, userID int64) ([]CopyFilm, error) {
	return s.list(ctx, "get by owner", s.selectFrom()+" WHERE user_id=?", userID)
}
