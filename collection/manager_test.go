package collection

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempManager(t *testing.T, opts Options) *CollectionManager {
	t.Helper()
	mgr, err := NewManager(tempDB(t), opts)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return mgr
}

func TestCollectionScenario(t *testing.T) {
	ctx := context.Background()
	mgr, err := NewCollectionManager(filepath.Join(t.TempDir(), "films.db"))
	require.NoError(t, err)
	defer mgr.Close()

	u := User{Username: "alice", Password: "secret"}
	require.NoError(t, mgr.RegisterUser(ctx, &u))
	f := Film{Title: "Matrix", Genre: "SciFi", Year: 1999, Description: "", Director: "Wachowski"}
	require.NoError(t, mgr.AddFilm(ctx, &f))
	c := CopyFilm{Condition: "New", Support: "DVD", FilmID: f.ID, UserID: u.ID}
	require.NoError(t, mgr.AddCopyFor(ctx, &c))

	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, int64(1), f.ID)
	assert.Equal(t, int64(1), c.ID)

	owned, err := mgr.ListCopiesByOwner(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []CopyFilm{c}, owned)

	got, err := mgr.Users.ValidateCredentials(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = mgr.Users.ValidateCredentials(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestManagerSessionFlow(t *testing.T) {
	ctx := context.Background()
	mgr := tempManager(t, Options{})

	u := User{Username: "alice", Password: "secret"}
	require.NoError(t, mgr.RegisterUser(ctx, &u))
	other := User{Username: "bob", Password: "pw"}
	require.NoError(t, mgr.RegisterUser(ctx, &other))
	matrix := Film{Title: "Matrix", Year: 1999}
	alien := Film{Title: "Alien", Year: 1979}
	require.NoError(t, mgr.AddFilm(ctx, &matrix))
	require.NoError(t, mgr.AddFilm(ctx, &alien))
	require.NoError(t, mgr.AddCopyFor(ctx, &CopyFilm{Condition: "Used", Support: "VHS", FilmID: alien.ID, UserID: other.ID}))

	sess := mgr.NewSession()
	ok, err := mgr.Login(ctx, sess, "alice", "nope")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = mgr.OwnedCopies(ctx, sess)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, mgr.AddCopy(ctx, sess, &CopyFilm{FilmID: matrix.ID}), ErrNotAuthenticated)

	ok, err = mgr.Login(ctx, sess, "alice", "secret")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, sess.OwnedCopies())

	dvd := CopyFilm{Condition: "New", Support: "DVD", FilmID: matrix.ID, UserID: other.ID}
	require.NoError(t, mgr.AddCopy(ctx, sess, &dvd))
	assert.Equal(t, u.ID, dvd.UserID)
	tape := CopyFilm{Condition: "Worn", Support: "VHS", FilmID: alien.ID}
	require.NoError(t, mgr.AddCopy(ctx, sess, &tape))

	list, err := mgr.OwnedCopies(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list, 2)
	titles := []string{list[0].Film.Title, list[1].Film.Title}
	assert.ElementsMatch(t, []string{"Matrix", "Alien"}, titles)

	oc, err := mgr.SelectCopy(ctx, sess, dvd.ID)
	require.NoError(t, err)
	assert.Equal(t, "Matrix", oc.Film.Title)
	sel, ok := sess.SelectedFilm()
	require.True(t, ok)
	assert.Equal(t, matrix, sel)
	assert.True(t, strings.Contains(PrettyCopy(oc), "Matrix"))

	require.NoError(t, mgr.DeleteSelectedCopy(ctx, sess))
	assert.Len(t, sess.OwnedCopies(), 1)
	_, ok = sess.SelectedFilm()
	assert.False(t, ok)

	stored, err := mgr.ListCopiesByOwner(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []CopyFilm{tape}, stored)

	mgr.Logout(sess)
	assert.False(t, sess.Authenticated())
}

func TestOwnedCopiesWithMissingFilm(t *testing.T) {
	ctx := context.Background()
	mgr := tempManager(t, Options{})

	u := User{Username: "carol", Password: "pw"}
	require.NoError(t, mgr.RegisterUser(ctx, &u))
	f := Film{Title: "Gone"}
	require.NoError(t, mgr.AddFilm(ctx, &f))

	sess := mgr.NewSession()
	ok, err := mgr.Login(ctx, sess, "carol", "pw")
	require.NoError(t, err)
	require.True(t, ok)

	// Appended directly so the foreign key never sees the dangling film id.
	require.NoError(t, sess.AppendCopy(CopyFilm{ID: 77, FilmID: f.ID + 50, UserID: u.ID}))

	list, err := mgr.OwnedCopies(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Film.IsZero())
}

func TestBcryptMode(t *testing.T) {
	ctx := context.Background()
	mgr := tempManager(t, Options{PasswordMode: PasswordBcrypt, BcryptCost: 4})

	u := User{Username: "alice", Password: "secret"}
	require.NoError(t, mgr.RegisterUser(ctx, &u))
	assert.NotEqual(t, "secret", u.Password)

	stored, err := mgr.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Password, "$2"))

	tests := []struct {
		password string
		want     bool
	}{
		{"secret", true},
		{"Secret", false},
		{"", false},
	}
	for _, tt := range tests {
		sess := mgr.NewSession()
		ok, err := mgr.Login(ctx, sess, "alice", tt.password)
		require.NoError(t, err)
		assert.Equal(t, tt.want, ok, "password %q", tt.password)
	}

	ok, err := mgr.Login(ctx, mgr.NewSession(), "nobody", "secret")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUnknownPasswordMode(t *testing.T) {
	_, err := NewManager(tempDB(t), Options{PasswordMode: "rot13"})
	assert.Error(t, err)
}

func TestFilmHelpers(t *testing.T) {
	ctx := context.Background()
	mgr := tempManager(t, Options{})

	f := Film{Title: "Heat"}
	require.NoError(t, mgr.AddFilm(ctx, &f))
	f.Director = "Mann"
	require.NoError(t, mgr.UpdateFilm(ctx, &f))

	got, ok, err := mgr.GetFilm(ctx, f.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Mann", got.Director)

	require.NoError(t, mgr.DeleteFilm(ctx, f.ID))
	_, ok, err = mgr.GetFilm(ctx, f.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	films, err := mgr.ListFilms(ctx)
	require.NoError(t, err)
	assert.Empty(t, films)
}
