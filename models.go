package birdblog

import "time"

// Species is the taxonomy root: every post and every named animal belongs to
// exactly one species. The name is globally unique.
type Species struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:128;uniqueIndex;not null"`

	Animals []Animal `gorm:"foreignKey:SpeciesID"`
	Posts   []Post   `gorm:"foreignKey:SpeciesID"`
}

// Animal is a named individual of a species. Name uniqueness is per species
// and enforced in the handlers, not by the database.
type Animal struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:128;not null"`
	SpeciesID uint   `gorm:"not null"`

	Species Species
}

// User is an uploader profile. Posts may optionally reference one.
type User struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:128;not null"`
	Bio  string
}

// Post is one photo submission tied to a species. UserID is nullable: posts
// predating uploader support have none, and the column itself may be missing
// from old databases until Migrate patches it in.
type Post struct {
	ID            uint   `gorm:"primaryKey"`
	Caption       string `gorm:"size:300;not null"`
	AnimalName    string `gorm:"size:100"`
	Notes         string
	ImageFilename string    `gorm:"size:300;not null"`
	CreatedAt     time.Time `gorm:"not null"`
	SpeciesID     uint      `gorm:"not null"`
	UserID        *uint

	Species Species
	User    *User
}
