package domain

import (
	"errors"
	"fmt"
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// User errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrUsernameEmpty = errors.New("username is required")
	ErrPasswordEmpty = errors.New("password is required")
)

// Settings validation errors
var (
	ErrNoSettings          = errors.New("no settings provided")
	ErrUnknownSetting      = errors.New("unknown setting")
	ErrInvalidSettingValue = errors.New("invalid setting value")
)

// SettingError names the key that failed validation. Err is either
// ErrUnknownSetting or ErrInvalidSettingValue.
type SettingError struct {
	Key    string
	Reason string
	Err    error
}

func (e *SettingError) Error() string {
	if errors.Is(e.Err, ErrUnknownSetting) {
		return fmt.Sprintf("Unknown setting: %s", e.Key)
	}
	if e.Reason == "" {
		return fmt.Sprintf("Invalid value for %s", e.Key)
	}
	return fmt.Sprintf("Invalid value for %s: %s", e.Key, e.Reason)
}

func (e *SettingError) Unwrap() error {
	return e.Err
}
