package entity

import "time"

// Company holds the company details submitted alongside an account.
// A company cannot exist without its owning user.
type Company struct {
	ID uint `gorm:"primaryKey"`

	// UserID references the owning user. One company per user.
	UserID uint `gorm:"uniqueIndex;not null"`

	CompanyName string  `gorm:"size:255;not null"`
	Address     string  `gorm:"size:500;not null"`
	City        string  `gorm:"size:255;not null"`
	Region      *string `gorm:"size:255"`
	Country     string  `gorm:"size:255;not null"`

	// YearEstablished is bounded to [1800, current year] by validation.
	YearEstablished int `gorm:"not null"`

	Website *string `gorm:"size:255"`

	// BrochurePath is the relative storage key of the uploaded brochure,
	// e.g. "brochures/brochure_12_20250102_150405.pdf". Nil when no file
	// was uploaded.
	BrochurePath *string `gorm:"size:255"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BrochureURL builds the publicly reachable URL for the stored brochure,
// or returns "" when no brochure exists.
func (c *Company) BrochureURL(assetBase string) string {
	if c.BrochurePath == nil || *c.BrochurePath == "" {
		return ""
	}
	return assetBase + "/storage/" + *c.BrochurePath
}
