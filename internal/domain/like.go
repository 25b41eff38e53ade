package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLikeNotFound is returned when a persisted like cannot be found.
var ErrLikeNotFound = errors.New("like not found")

// Validation errors for LikeIntent.
var (
	ErrInvalidFromUser = errors.New("from_user_tg_id must be a positive id")
	ErrInvalidToUser   = errors.New("to_user_tg_id must be a positive id")
	ErrSameUser        = errors.New("from_user_tg_id and to_user_tg_id must differ")
)

// LikeIntent is the wire message of the like pipeline. It is created by the
// API layer, serialized onto the queue, and decoded again by the worker.
// It never carries an identifier: the record id is assigned by the store at
// persistence time, and any id field present in an inbound message is ignored.
type LikeIntent struct {
	// FromUserTelegramID is the user expressing interest.
	FromUserTelegramID TelegramID `json:"from_user_tg_id"`

	// ToUserTelegramID is the target. Must differ from the sender.
	ToUserTelegramID TelegramID `json:"to_user_tg_id"`

	// Text is an optional free-text note shown with the like.
	Text *string `json:"text"`

	// IsLike is true for positive interest, false for an explicit pass.
	IsLike bool `json:"is_like"`

	// IsReaded reports whether the target has viewed the like. Defaults to
	// false on submission; flipped later through the read-marking endpoint.
	IsReaded bool `json:"is_readed"`
}

// Normalize trims the optional note, collapsing whitespace-only input to
// absent so the store never holds blank notes.
func (i *LikeIntent) Normalize() {
	if i.Text == nil {
		return
	}
	trimmed := strings.TrimSpace(*i.Text)
	if trimmed == "" {
		i.Text = nil
		return
	}
	i.Text = &trimmed
}

// Validate checks the schema constraints shared by producer and consumer.
// The queue is an untrusted boundary, so the worker re-runs this on every
// delivery even though the API layer validated before publishing.
func (i *LikeIntent) Validate() error {
	if !i.FromUserTelegramID.IsValid() {
		return ErrInvalidFromUser
	}
	if !i.ToUserTelegramID.IsValid() {
		return ErrInvalidToUser
	}
	if i.FromUserTelegramID == i.ToUserTelegramID {
		return ErrSameUser
	}
	return nil
}

// DecodeLikeIntent parses a queue message body into a normalized, validated
// intent. Unknown fields, including any client-supplied id, are dropped by
// the decoder.
func DecodeLikeIntent(body []byte) (*LikeIntent, error) {
	var intent LikeIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("decode like intent: %w", err)
	}

	intent.Normalize()
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	return &intent, nil
}

// Record builds the persistable like from a validated intent. The ID is left
// zero for the store to assign.
func (i *LikeIntent) Record() *Like {
	return &Like{
		FromUserTelegramID: i.FromUserTelegramID,
		ToUserTelegramID:   i.ToUserTelegramID,
		Text:               i.Text,
		IsLike:             i.IsLike,
		IsReaded:           i.IsReaded,
	}
}

// Like is the persisted record created exactly once per successfully
// processed intent. Duplicate intents are not collapsed: redelivering an
// already-persisted intent creates a second record.
type Like struct {
	// ID is the store-assigned identifier.
	ID int64 `json:"id"`

	FromUserTelegramID TelegramID `json:"from_user_tg_id"`
	ToUserTelegramID   TelegramID `json:"to_user_tg_id"`
	Text               *string    `json:"text,omitempty"`
	IsLike             bool       `json:"is_like"`
	IsReaded           bool       `json:"is_readed"`

	CreatedAt time.Time `json:"created_at"`
}
