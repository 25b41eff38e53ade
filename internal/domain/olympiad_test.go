package domain

import (
	"testing"
)

func TestOlympiad_Validate(t *testing.T) {
	valid := Olympiad{
		Name:           "All-Russian Olympiad",
		Profile:        "mathematics",
		Level:          1,
		UserTelegramID: 100,
		Result:         ResultWinner,
		Year:           "2024",
	}

	tests := []struct {
		name    string
		mutate  func(o *Olympiad)
		wantErr error
	}{
		{
			name:    "valid olympiad",
			mutate:  func(o *Olympiad) {},
			wantErr: nil,
		},
		{
			name:    "unranked level is allowed",
			mutate:  func(o *Olympiad) { o.Level = 0 },
			wantErr: nil,
		},
		{
			name:    "missing name",
			mutate:  func(o *Olympiad) { o.Name = "" },
			wantErr: ErrEmptyOlympiadName,
		},
		{
			name:    "missing profile",
			mutate:  func(o *Olympiad) { o.Profile = "" },
			wantErr: ErrEmptyOlympiadProfile,
		},
		{
			name:    "level out of range",
			mutate:  func(o *Olympiad) { o.Level = 4 },
			wantErr: ErrInvalidOlympiadLevel,
		},
		{
			name:    "missing user id",
			mutate:  func(o *Olympiad) { o.UserTelegramID = 0 },
			wantErr: ErrInvalidTelegramID,
		},
		{
			name:    "result out of range",
			mutate:  func(o *Olympiad) { o.Result = 7 },
			wantErr: ErrInvalidResult,
		},
		{
			name:    "missing year",
			mutate:  func(o *Olympiad) { o.Year = "" },
			wantErr: ErrEmptyOlympiadYear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			if err := o.Validate(); err != tt.wantErr {
				t.Errorf("Olympiad.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr error
	}{
		{
			name:    "valid user",
			user:    User{TelegramID: 123456},
			wantErr: nil,
		},
		{
			name:    "missing telegram id",
			user:    User{},
			wantErr: ErrInvalidTelegramID,
		},
		{
			name:    "negative telegram id",
			user:    User{TelegramID: -1},
			wantErr: ErrInvalidTelegramID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.user.Validate(); err != tt.wantErr {
				t.Errorf("User.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
