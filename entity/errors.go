package entity

import "errors"

var (
	// ErrUnauthorized means the access token was rejected.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidOtp means the one-time code was wrong or expired.
	ErrInvalidOtp = errors.New("invalid or expired otp")
)
