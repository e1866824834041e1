package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Password storage modes.
const (
	PasswordPlain  = "plain"
	PasswordBcrypt = "bcrypt"
)

// Options tune a CollectionManager. The zero value gives plain passwords, no
// cache and no logging.
type Options struct {
	Logger       zerolog.Logger
	PasswordMode string
	BcryptCost   int

	Cache       *redis.Client
	CacheTTL    time.Duration
	CachePrefix string
}

// CollectionManager is a thin façade over the stores, keeping CLI code simple.
type CollectionManager struct {
	db *Database

	Films  EntityStore[Film]
	Users  *UserStore
	Copies *CopyStore

	auth         Authenticator
	passwordMode string
	bcryptCost   int
	log          zerolog.Logger
}

// NewCollectionManager opens (or creates) the SQLite database at dbPath.
func NewCollectionManager(dbPath string) (*CollectionManager, error) {
	db, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}
	mgr, err := NewManager(db, Options{})
	if err != nil {
		db.Close()
		return nil, err
	}
	return mgr, nil
}

// NewManager builds the stores on top of an open database.
func NewManager(db *Database, opts Options) (*CollectionManager, error) {
	m := &CollectionManager{
		db:           db,
		Users:        NewUserStore(db),
		Copies:       NewCopyStore(db),
		passwordMode: opts.PasswordMode,
		bcryptCost:   opts.BcryptCost,
		log:          opts.Logger,
	}

	switch m.passwordMode {
	case "", PasswordPlain:
		m.passwordMode = PasswordPlain
		m.auth = PlainAuthenticator{Users: m.Users}
	case PasswordBcrypt:
		m.auth = BcryptAuthenticator{Users: m.Users}
	default:
		return nil, fmt.Errorf("unknown password mode %q", opts.PasswordMode)
	}

	prefix := opts.CachePrefix
	if prefix == "" {
		prefix = "films"
	}
	// Cache keys are scoped to this database instance.
	prefix += ":" + db.InstanceID()
	m.Films = NewCachedFilmStore(NewFilmStore(db), opts.Cache, opts.CacheTTL, prefix, opts.Logger)
	return m, nil
}

// Close closes the underlying database.
func (m *CollectionManager) Close() error { return m.db.Close() }

// Database exposes the endpoint the stores share.
func (m *CollectionManager) Database() *Database { return m.db }

// NewSession returns an empty session logging through the manager's logger.
func (m *CollectionManager) NewSession() *Session { return NewSession(m.log) }

// ------------------ Film helpers ------------------

func (m *CollectionManager) AddFilm(ctx context.Context, f *Film) error { return m.Films.Add(ctx, f) }
func (m *CollectionManager) UpdateFilm(ctx context.Context, f *Film) error {
	return m.Films.Update(ctx, f)
}
func (m *CollectionManager) ListFilms(ctx context.Context) ([]Film, error) {
	return m.Films.GetAll(ctx)
}

// GetFilm returns the film and whether it exists.
func (m *CollectionManager) GetFilm(ctx context.Context, id int64) (Film, bool, error) {
	return Find(ctx, m.Films, id)
}

func (m *CollectionManager) DeleteFilm(ctx context.Context, id int64) error {
	return m.Films.Delete(ctx, &Film{ID: id})
}

// ------------------ User helpers ------------------

// RegisterUser stores u, replacing its password with a digest in bcrypt mode.
func (m *CollectionManager) RegisterUser(ctx context.Context, u *User) error {
	if m.passwordMode == PasswordBcrypt {
		hash, err := HashPassword(u.Password, m.bcryptCost)
		if err != nil {
			return err
		}
		u.Password = hash
	}
	if err := m.Users.Add(ctx, u); err != nil {
		return err
	}
	m.log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("user registered")
	return nil
}

func (m *CollectionManager) ListUsers(ctx context.Context) ([]User, error) {
	return m.Users.GetAll(ctx)
}

// ------------------ Copy helpers ------------------

func (m *CollectionManager) ListCopies(ctx context.Context) ([]CopyFilm, error) {
	return m.Copies.GetAll(ctx)
}

func (m *CollectionManager) ListCopiesByOwner(ctx context.Context, userID int64) ([]CopyFilm, error) {
	return m.Copies.GetByOwner(ctx, userID)
}

// AddCopyFor inserts a copy without touching any session.
func (m *CollectionManager) AddCopyFor(ctx context.Context, c *CopyFilm) error {
	return m.Copies.Add(ctx, c)
}

func (m *CollectionManager) DeleteCopy(ctx context.Context, id int64) error {
	return m.Copies.Delete(ctx, &CopyFilm{ID: id})
}

// ------------------ Session flow ------------------

// Login authenticates and loads the user's copies into sess.
func (m *CollectionManager) Login(ctx context.Context, sess *Session, username, password string) (bool, error) {
	return sess.Login(ctx, m.auth, m.Copies, username, password)
}

// Logout clears sess.
func (m *CollectionManager) Logout(sess *Session) { sess.Reset() }

// AddCopy stores a copy owned by the session's user and appends it to the
// working set.
func (m *CollectionManager) AddCopy(ctx context.Context, sess *Session, c *CopyFilm) error {
	user, ok := sess.CurrentUser()
	if !ok {
		return ErrNotAuthenticated
	}
	c.UserID = user.ID
	if err := m.Copies.Add(ctx, c); err != nil {
		return err
	}
	return sess.AppendCopy(*c)
}

// OwnedCopies resolves the film of every copy in the working set. A copy whose
// film row is gone is paired with the zero Film.
func (m *CollectionManager) OwnedCopies(ctx context.Context, sess *Session) ([]OwnedCopy, error) {
	if !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	copies := sess.OwnedCopies()
	out := make([]OwnedCopy, 0, len(copies))
	for _, c := range copies {
		f, err := m.Films.GetByID(ctx, c.FilmID)
		if err != nil {
			return nil, err
		}
		out = append(out, OwnedCopy{Copy: c, Film: f})
	}
	return out, nil
}

// SelectCopy selects an owned copy and its film.
func (m *CollectionManager) SelectCopy(ctx context.Context, sess *Session, copyID int64) (OwnedCopy, error) {
	c, err := sess.SelectCopy(copyID)
	if err != nil {
		return OwnedCopy{}, err
	}
	f, err := m.Films.GetByID(ctx, c.FilmID)
	if err != nil {
		sess.ClearSelection()
		return OwnedCopy{}, err
	}
	sess.SelectFilm(f)
	return OwnedCopy{Copy: c, Film: f}, nil
}

// DeleteSelectedCopy removes the selected copy from storage and the session.
func (m *CollectionManager) DeleteSelectedCopy(ctx context.Context, sess *Session) error {
	return sess.DeleteSelectedCopy(ctx, m.Copies)
}

// ------------------ Utilities ------------------

// PrettyCopy formats an owned copy for lists.
func PrettyCopy(oc OwnedCopy) string {
	return fmt.Sprintf("%-5d %-30s %-12s %-12s", oc.Copy.ID, oc.Film.Title, oc.Copy.Condition, oc.Copy.Support)
}
