package errors

import "fmt"

var (
	// Authentication failures surfaced as 401 on protected routes and as an
	// immediate close on the realtime handshake.
	ErrInvalidCredential = fmt.Errorf("invalid credential")
	ErrExpiredCredential = fmt.Errorf("credential expired")
	ErrUnknownSubject    = fmt.Errorf("unknown subject")

	// Login/registration path.
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	// Store lookups.
	ErrNotFound = fmt.Errorf("not found")
)
