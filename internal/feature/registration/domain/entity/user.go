// Package entity defines the domain entities for the registration feature.
package entity

import "time"

// Participation types a registrant may choose. The canonical capitalized
// form is what gets stored; input is normalized before validation.
const (
	ParticipationBuyer     = "Buyer"
	ParticipationExhibitor = "Exhibitor"
	ParticipationVisitor   = "Visitor"
)

// User represents a registered account.
// It owns exactly one Company, created in the same transaction.
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	FirstName string `gorm:"size:255;not null"`
	LastName  string `gorm:"size:255;not null"`

	// Email must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Username must be unique across all users.
	Username string `gorm:"uniqueIndex;size:50;not null"`

	// Password is the bcrypt hash of the user's password.
	// Plaintext passwords are never stored or serialized.
	Password string `gorm:"size:255;not null" json:"-"`

	// ParticipationType is one of the Participation* constants.
	ParticipationType string `gorm:"size:20;not null"`

	// Company is the one-to-one owned company record.
	Company *Company

	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
