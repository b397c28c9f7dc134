package views

import "time"

// SiteConfig holds the site-wide settings the layout needs. Handlers pass it
// to every page so nothing is hardcoded.
type SiteConfig struct {
	Name string // SITE_NAME
	URL  string // SITE_URL, canonical base
}

// Flash is a one-shot notice queued in the session and rendered on the next
// page. Category is one of success, info, warning, danger.
type Flash struct {
	Category string
	Message  string
}

// SpeciesItem is the view model for one species.
type SpeciesItem struct {
	ID   uint
	Name string
}

// AnimalItem is the view model for one named animal.
type AnimalItem struct {
	ID   uint
	Name string
}

// UserItem is the view model for one uploader profile.
type UserItem struct {
	ID   uint
	Name string
	Bio  string
}

// PostItem is the view model for one photo post, flattened for rendering.
type PostItem struct {
	ID            uint
	Caption       string
	AnimalName    string
	Notes         string
	ImageFilename string
	SpeciesID     uint
	SpeciesName   string
	UserName      string
	CreatedAt     time.Time
}
