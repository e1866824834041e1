package collection

// Film is a catalogue entry. ID is zero until the store assigns one.
type Film struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Genre       string `json:"genre"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	Director    string `json:"director"`
}

// IsZero reports whether the film has no assigned identifier.
func (f Film) IsZero() bool { return f.ID == 0 }

// User is an account that owns copies. Password is stored as given, so in
// plain mode it is clear text; see BcryptAuthenticator for the digest mode.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // Don't serialize credentials

	// Copies is populated on demand and never persisted.
	Copies []CopyFilm `json:"copies,omitempty"`
}

func (u User) IsZero() bool { return u.ID == 0 }

// CopyFilm is one physical or digital copy of a Film owned by a User.
type CopyFilm struct {
	ID        int64  `json:"id"`
	Condition string `json:"condition"`
	Support   string `json:"support"`
	FilmID    int64  `json:"film_id"`
	UserID    int64  `json:"user_id"`
}

func (c CopyFilm) IsZero() bool { return c.ID == 0 }

// OwnedCopy pairs a copy with its resolved film for listings.
type OwnedCopy struct {
	Copy CopyFilm `json:"copy"`
	Film Film     `json:"film"`
}
