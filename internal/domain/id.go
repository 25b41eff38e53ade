package domain

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidTelegramID is returned when an external id is zero, negative,
// or not a number.
var ErrInvalidTelegramID = errors.New("telegram id must be a positive integer")

// TelegramID is the external identifier users register with.
// Historically the wire format carried it either as a JSON number or as a
// numeric string, so decoding accepts both and normalizes to int64.
type TelegramID int64

// IsValid returns true if the id is positive.
func (id TelegramID) IsValid() bool {
	return id > 0
}

// String implements fmt.Stringer.
func (id TelegramID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// UnmarshalJSON accepts both `123` and `"123"` wire forms.
func (id *TelegramID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}

	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTelegramID, data)
	}

	*id = TelegramID(v)
	return nil
}
