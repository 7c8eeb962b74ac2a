package auth

import "errors"

var (
	// Unauthorized family. "No such account" and "wrong password" collapse
	// into ErrInvalidCredentials so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")

	// NotFound family, for email-keyed lookups.
	ErrAccountNotFound = errors.New("account not found")

	// BadRequest family. Reset failures collapse "unknown token" and
	// "expired token" into one message on purpose.
	ErrResetTokenInvalid = errors.New("invalid or expired token")
	ErrAlreadyVerified   = errors.New("email is already verified")

	ErrPasswordHashingFailed = errors.New("failed to hash password")
)
