package collection

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OwnerLister loads the copies owned by a user.
type OwnerLister interface {
	GetByOwner(ctx context.Context, userID int64) ([]CopyFilm, error)
}

// CopyDeleter removes a copy from storage.
type CopyDeleter interface {
	Delete(ctx context.Context, c *CopyFilm) error
}

// Session is the working state of one authenticated user: who is logged in,
// which copies they own and what is currently selected. It is not safe for
// concurrent use; one interactive user drives it sequentially.
type Session struct {
	ID  string
	log zerolog.Logger

	user         *User
	copies       []CopyFilm
	selectedCopy *CopyFilm
	selectedFilm *Film
}

// NewSession returns an empty session with a fresh correlation id.
func NewSession(logger zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		ID:  id,
		log: logger.With().Str("session_id", id).Logger(),
	}
}

// Login validates the credentials and, on a match, replaces the session state
// with the user and the copies they own. A mismatch returns false and leaves
// the session untouched.
func (s *Session) Login(ctx context.Context, auth Authenticator, copies OwnerLister, username, password string) (bool, error) {
	user, err := auth.Authenticate(ctx, username, password)
	if err != nil {
		return false, fmt.Errorf("authenticate %q: %w", username, err)
	}
	if user.IsZero() {
		s.log.Warn().Str("username", username).Msg("login rejected")
		return false, nil
	}

	owned, err := copies.GetByOwner(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("load copies of user %d: %w", user.ID, err)
	}

	s.Reset()
	user.Copies = nil
	s.user = &user
	s.copies = owned
	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Int("copies", len(owned)).Msg("logged in")
	return true, nil
}

// Reset clears the user, the owned copies and both selections.
func (s *Session) Reset() {
	if s.user != nil {
		s.log.Info().Int64("user_id", s.user.ID).Msg("session reset")
	}
	s.user = nil
	s.copies = nil
	s.selectedCopy = nil
	s.selectedFilm = nil
}

func (s *Session) Authenticated() bool { return s.user != nil }

// CurrentUser returns the logged in user with Copies filled from the working set.
func (s *Session) CurrentUser() (User, bool) {
	if s.user == nil {
		return User{}, false
	}
	u := *s.user
	u.Copies = s.OwnedCopies()
	return u, true
}

// OwnedCopies returns a snapshot of the working set.
func (s *Session) OwnedCopies() []CopyFilm {
	return slices.Clone(s.copies)
}

// SelectCopy marks an owned copy as selected.
func (s *Session) SelectCopy(copyID int64) (CopyFilm, error) {
	if s.user == nil {
		return CopyFilm{}, ErrNotAuthenticated
	}
	i := s.indexOf(copyID)
	if i < 0 {
		return CopyFilm{}, fmt.Errorf("select copy %d: %w", copyID, ErrCopyNotOwned)
	}
	c := s.copies[i]
	s.selectedCopy = &c
	return c, nil
}

func (s *Session) SelectedCopy() (CopyFilm, bool) {
	if s.selectedCopy == nil {
		return CopyFilm{}, false
	}
	return *s.selectedCopy, true
}

func (s *Session) SelectFilm(f Film) {
	s.selectedFilm = &f
}

func (s *Session) SelectedFilm() (Film, bool) {
	if s.selectedFilm == nil {
		return Film{}, false
	}
	return *s.selectedFilm, true
}

// ClearSelection drops the selected copy and film.
func (s *Session) ClearSelection() {
	s.selectedCopy = nil
	s.selectedFilm = nil
}

// AppendCopy adds a stored copy owned by the current user to the working set.
func (s *Session) AppendCopy(c CopyFilm) error {
	if s.user == nil {
		return ErrNotAuthenticated
	}
	if c.UserID != s.user.ID {
		return fmt.Errorf("append copy %d of user %d: %w", c.ID, c.UserID, ErrCopyNotOwned)
	}
	s.copies = append(s.copies, c)
	return nil
}

// DeleteSelectedCopy deletes the selected copy from storage and then from the
// working set. If the store fails the working set and selection are left as
// they were.
func (s *Session) DeleteSelectedCopy(ctx context.Context, store CopyDeleter) error {
	if s.user == nil {
		return ErrNotAuthenticated
	}
	if s.selectedCopy == nil {
		return ErrNoSelection
	}

	target := *s.selectedCopy
	if err := store.Delete(ctx, &target); err != nil {
		return fmt.Errorf("delete copy %d: %w", target.ID, err)
	}

	if i := s.indexOf(target.ID); i >= 0 {
		s.copies = slices.Delete(s.copies, i, i+1)
	}
	s.selectedCopy = nil
	s.selectedFilm = nil
	s.log.Info().Int64("copy_id", target.ID).Msg("copy deleted")
	return nil
}

func (s *Session) indexOf(copyID int64) int {
	return slices.IndexFunc(s.copies, func(c CopyFilm) bool { return c.ID == copyID })
}
