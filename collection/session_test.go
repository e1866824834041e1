package collection

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthenticator struct {
	mock.Mock
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, username, password string) (User, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(User), args.Error(1)
}

type mockCopyStore struct {
	mock.Mock
}

func (m *mockCopyStore) GetByOwner(ctx context.Context, userID int64) ([]CopyFilm, error) {
	args := m.Called(ctx, userID)
	if v := args.Get(0); v != nil {
		return v.([]CopyFilm), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCopyStore) Delete(ctx context.Context, c *CopyFilm) error {
	return m.Called(ctx, c).Error(0)
}

var (
	alice       = User{ID: 1, Username: "alice", Password: "secret"}
	aliceCopies = []CopyFilm{
		{ID: 10, Condition: "New", Support: "DVD", FilmID: 100, UserID: 1},
		{ID: 11, Condition: "Used", Support: "VHS", FilmID: 101, UserID: 1},
		{ID: 12, Condition: "Good", Support: "Blu-ray", FilmID: 100, UserID: 1},
	}
)

func loggedIn(t *testing.T) (*Session, *mockCopyStore) {
	t.Helper()
	ctx := context.Background()
	auth := &mockAuthenticator{}
	auth.On("Authenticate", ctx, "alice", "secret").Return(alice, nil)
	store := &mockCopyStore{}
	store.On("GetByOwner", ctx, int64(1)).Return(append([]CopyFilm(nil), aliceCopies...), nil)

	s := NewSession(zerolog.Nop())
	ok, err := s.Login(ctx, auth, store, "alice", "secret")
	require.NoError(t, err)
	require.True(t, ok)
	return s, store
}

func TestNewSessionIsEmpty(t *testing.T) {
	s := NewSession(zerolog.Nop())
	assert.NotEmpty(t, s.ID)
	assert.NotEqual(t, s.ID, NewSession(zerolog.Nop()).ID)
	assert.False(t, s.Authenticated())
	_, ok := s.CurrentUser()
	assert.False(t, ok)
	assert.Empty(t, s.OwnedCopies())
}

func TestLoginLoadsUserAndCopies(t *testing.T) {
	s, store := loggedIn(t)

	u, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, alice.ID, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, aliceCopies, u.Copies)
	assert.Equal(t, aliceCopies, s.OwnedCopies())
	store.AssertExpectations(t)
}

func TestLoginRejectedLeavesSessionUntouched(t *testing.T) {
	ctx := context.Background()
	auth := &mockAuthenticator{}
	auth.On("Authenticate", ctx, "alice", "wrong").Return(User{}, nil)
	store := &mockCopyStore{}

	s := NewSession(zerolog.Nop())
	ok, err := s.Login(ctx, auth, store, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.Authenticated())
	store.AssertNotCalled(t, "GetByOwner", mock.Anything, mock.Anything)
}

func TestFailedLoginKeepsPreviousUser(t *testing.T) {
	s, _ := loggedIn(t)
	_, err := s.SelectCopy(11)
	require.NoError(t, err)

	ctx := context.Background()
	auth := &mockAuthenticator{}
	auth.On("Authenticate", ctx, "bob", "nope").Return(User{}, nil)
	ok, err := s.Login(ctx, auth, &mockCopyStore{}, "bob", "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	u, _ := s.CurrentUser()
	assert.Equal(t, "alice", u.Username)
	sel, ok := s.SelectedCopy()
	assert.True(t, ok)
	assert.Equal(t, int64(11), sel.ID)
}

func TestLoginPropagatesStorageFaults(t *testing.T) {
	ctx := context.Background()
	boom := storageErr("query", "user", errors.New("connection refused"))

	t.Run("authenticate", func(t *testing.T) {
		auth := &mockAuthenticator{}
		auth.On("Authenticate", ctx, "alice", "secret").Return(User{}, boom)
		s := NewSession(zerolog.Nop())
		ok, err := s.Login(ctx, auth, &mockCopyStore{}, "alice", "secret")
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrStorage)
		assert.False(t, s.Authenticated())
	})

	t.Run("owned copies", func(t *testing.T) {
		auth := &mockAuthenticator{}
		auth.On("Authenticate", ctx, "alice", "secret").Return(alice, nil)
		store := &mockCopyStore{}
		store.On("GetByOwner", ctx, int64(1)).Return(nil, boom)
		s := NewSession(zerolog.Nop())
		ok, err := s.Login(ctx, auth, store, "alice", "secret")
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrStorage)
		assert.False(t, s.Authenticated())
	})
}

func TestSelectCopy(t *testing.T) {
	s := NewSession(zerolog.Nop())
	_, err := s.SelectCopy(10)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	s, _ = loggedIn(t)
	_, err = s.SelectCopy(99)
	assert.ErrorIs(t, err, ErrCopyNotOwned)
	_, ok := s.SelectedCopy()
	assert.False(t, ok)

	c, err := s.SelectCopy(11)
	require.NoError(t, err)
	assert.Equal(t, aliceCopies[1], c)
	s.SelectFilm(Film{ID: 101, Title: "Matrix"})

	u, _ := s.CurrentUser()
	assert.Equal(t, "alice", u.Username)
	assert.Len(t, s.OwnedCopies(), 3)

	f, ok := s.SelectedFilm()
	require.True(t, ok)
	assert.Equal(t, "Matrix", f.Title)

	s.ClearSelection()
	_, ok = s.SelectedCopy()
	assert.False(t, ok)
	_, ok = s.SelectedFilm()
	assert.False(t, ok)
}

func TestOwnedCopiesIsASnapshot(t *testing.T) {
	s, _ := loggedIn(t)
	got := s.OwnedCopies()
	got[0].Condition = "Destroyed"
	assert.Equal(t, "New", s.OwnedCopies()[0].Condition)
}

func TestResetClearsEverything(t *testing.T) {
	s, _ := loggedIn(t)
	_, err := s.SelectCopy(10)
	require.NoError(t, err)
	s.SelectFilm(Film{ID: 100})
	id := s.ID

	s.Reset()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.OwnedCopies())
	_, ok := s.SelectedCopy()
	assert.False(t, ok)
	_, ok = s.SelectedFilm()
	assert.False(t, ok)
	assert.Equal(t, id, s.ID)
}

func TestDeleteSelectedCopy(t *testing.T) {
	ctx := context.Background()
	s, store := loggedIn(t)
	_, err := s.SelectCopy(11)
	require.NoError(t, err)
	s.SelectFilm(Film{ID: 101})

	store.On("Delete", ctx, mock.MatchedBy(func(c *CopyFilm) bool { return c.ID == 11 })).Return(nil).Once()
	require.NoError(t, s.DeleteSelectedCopy(ctx, store))

	assert.Equal(t, []CopyFilm{aliceCopies[0], aliceCopies[2]}, s.OwnedCopies())
	_, ok := s.SelectedCopy()
	assert.False(t, ok)
	_, ok = s.SelectedFilm()
	assert.False(t, ok)
	store.AssertExpectations(t)
}

func TestDeleteSelectedCopyStorageFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	s, store := loggedIn(t)
	_, err := s.SelectCopy(12)
	require.NoError(t, err)
	s.SelectFilm(Film{ID: 100})

	store.On("Delete", ctx, mock.Anything).Return(storageErr("delete", "copy", errors.New("disk full"))).Once()
	err = s.DeleteSelectedCopy(ctx, store)
	require.ErrorIs(t, err, ErrStorage)

	assert.Equal(t, aliceCopies, s.OwnedCopies())
	sel, ok := s.SelectedCopy()
	require.True(t, ok)
	assert.Equal(t, int64(12), sel.ID)
	_, ok = s.SelectedFilm()
	assert.True(t, ok)
}

func TestDeleteSelectedCopyPreconditions(t *testing.T) {
	ctx := context.Background()
	store := &mockCopyStore{}

	s := NewSession(zerolog.Nop())
	assert.ErrorIs(t, s.DeleteSelectedCopy(ctx, store), ErrNotAuthenticated)

	s, store = loggedIn(t)
	assert.ErrorIs(t, s.DeleteSelectedCopy(ctx, store), ErrNoSelection)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAppendCopy(t *testing.T) {
	s := NewSession(zerolog.Nop())
	assert.ErrorIs(t, s.AppendCopy(CopyFilm{ID: 1, UserID: 1}), ErrNotAuthenticated)

	s, _ = loggedIn(t)
	assert.ErrorIs(t, s.AppendCopy(CopyFilm{ID: 20, UserID: 2}), ErrCopyNotOwned)

	c := CopyFilm{ID: 20, Condition: "New", Support: "DVD", FilmID: 100, UserID: 1}
	require.NoError(t, s.AppendCopy(c))
	assert.Len(t, s.OwnedCopies(), 4)
	_, err := s.SelectCopy(20)
	assert.NoError(t, err)
}
