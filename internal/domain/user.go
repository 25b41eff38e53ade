// Package domain contains the core business entities and value objects for
// OlyMatch: user profiles, olympiad achievements, and the like pipeline's
// message and record types.
package domain

import (
	"errors"
	"time"
)

// ErrUserNotFound is returned when no user exists for a telegram id.
var ErrUserNotFound = errors.New("user not found")

// Relationship status values for User.Status.
const (
	StatusSingle      = 0
	StatusInRelations = 1
)

// Matching goal values for User.Goal.
const (
	GoalSharedBot    = 0
	GoalChatting     = 1
	GoalTeamSearch   = 2
	GoalRelationship = 3
)

// User is a registered profile, keyed by the external telegram id.
type User struct {
	// ID is the store-assigned identifier.
	ID int64 `json:"id"`

	// TelegramID is the unique external identifier the user registered with.
	TelegramID TelegramID `json:"tg_id"`

	FirstName     string `json:"first_name,omitempty"`
	LastName      string `json:"last_name,omitempty"`
	MiddleName    string `json:"middle_name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	PhoneVerified bool   `json:"phone_verified"`
	Age           int    `json:"age,omitempty"`
	City          string `json:"city,omitempty"`

	// Status is the relationship status (single / in relations).
	Status int `json:"status"`

	// Goal is what the user is looking for on the platform.
	Goal int `json:"goal"`

	// WhoInterested encodes the audience the user wants to be shown to.
	WhoInterested int `json:"who_interested"`

	// DateOfBirth is kept as the client-supplied DD-MM-YYYY string.
	DateOfBirth string `json:"date_of_birth,omitempty"`

	Description string `json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields a registration must carry.
func (u *User) Validate() error {
	if !u.TelegramID.IsValid() {
		return ErrInvalidTelegramID
	}
	return nil
}
