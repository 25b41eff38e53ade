package domain

import "errors"

// ErrOlympiadNotFound is returned when an achievement record cannot be found.
var ErrOlympiadNotFound = errors.New("olympiad record not found")

// Olympiad result placements.
const (
	ResultWinner      = 0
	ResultPrizeWinner = 1
	ResultFinalist    = 2
	ResultParticipant = 3
)

// Olympiad is a verified competition achievement attached to a user profile.
type Olympiad struct {
	// ID is the store-assigned identifier.
	ID int64 `json:"id"`

	// Name is the competition name.
	Name string `json:"name"`

	// Profile is the competition subject area.
	Profile string `json:"profile"`

	// Level is the official tier: 1-3, or 0 for unranked competitions.
	Level int `json:"level"`

	// UserTelegramID links the achievement to its owner.
	UserTelegramID TelegramID `json:"user_tg_id"`

	// Result is the placement achieved (winner through participant).
	Result int `json:"result"`

	// Year is the competition year as supplied by the client.
	Year string `json:"year"`

	// IsApproved is set once moderation verifies the achievement.
	IsApproved bool `json:"is_approved"`

	// IsDisplayed controls whether the achievement shows on the profile.
	IsDisplayed bool `json:"is_displayed"`
}

// Validation errors for Olympiad.
var (
	ErrEmptyOlympiadName    = errors.New("olympiad name is required")
	ErrEmptyOlympiadProfile = errors.New("olympiad profile is required")
	ErrEmptyOlympiadYear    = errors.New("olympiad year is required")
	ErrInvalidOlympiadLevel = errors.New("olympiad level must be between 0 and 3")
	ErrInvalidResult        = errors.New("result must be between 0 (winner) and 3 (participant)")
)

// Validate checks that the achievement has all required fields with valid values.
func (o *Olympiad) Validate() error {
	if o.Name == "" {
		return ErrEmptyOlympiadName
	}
	if o.Profile == "" {
		return ErrEmptyOlympiadProfile
	}
	if o.Level < 0 || o.Level > 3 {
		return ErrInvalidOlympiadLevel
	}
	if !o.UserTelegramID.IsValid() {
		return ErrInvalidTelegramID
	}
	if o.Result < ResultWinner || o.Result > ResultParticipant {
		return ErrInvalidResult
	}
	if o.Year == "" {
		return ErrEmptyOlympiadYear
	}
	return nil
}
