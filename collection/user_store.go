package collection

import "context"

// UserStore persists accounts in the user table.
type UserStore struct {
	sqlStore[User]
}

var _ EntityStore[User] = (*UserStore)(nil)

func NewUserStore(db *Database) *UserStore {
	return &UserStore{sqlStore[User]{db: db, m: userMapping}}
}

var userMapping = mapping[User]{
	table:   "user",
	columns: []string{"username", "password"},
	id:      func(u *User) *int64 { return &u.ID },
	values:  func(u *User) []any { return []any{u.Username, u.Password} },
	fields:  func(u *User) []any { return []any{&u.Username, &u.Password} },
}

// ValidateCredentials returns the user whose stored username and password
// both equal the arguments exactly, or the zero User when none does.
//
// The comparison is on clear text. It exists for compatibility with
// databases created in plain mode and is not a substitute for hashing.
func (s *UserStore) ValidateCredentials(ctx context.Context, username, password string) (User, error) {
	return s.first(ctx, "validate credentials", s.selectFrom()+" WHERE username=? AND password=?", username, password)
}

// GetByUsername returns the first user with the given username, or the zero User.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (User, error) {
	return s.first(ctx, "get by username", s.selectFrom()+" WHERE username=? ORDER BY id", username)
}
