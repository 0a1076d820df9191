package models

// Cast is a person associated with one or more works. Immutable value object
// built from a remote response or reconstructed from a deep link.
type Cast struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Character    string  `json:"character,omitempty"`
	Birthday     string  `json:"birthday,omitempty"`
	DeathDay     string  `json:"deathDay,omitempty"`
	Biography    string  `json:"biography,omitempty"`
	ProfilePath  string  `json:"profilePath,omitempty"`
	ThumbnailURL string  `json:"thumbnailUrl,omitempty"`
	Popularity   float64 `json:"popularity,omitempty"`
	Source       string  `json:"source,omitempty"`
}

// CastDetails joins a person with their movie and TV credits. MovieCredits
// and TVCredits mirror whatever the remote source returned; either may be
// empty.
type CastDetails struct {
	Cast         Cast   `json:"cast"`
	MovieCredits []Work `json:"movieCredits"`
	TVCredits    []Work `json:"tvCredits"`
}
