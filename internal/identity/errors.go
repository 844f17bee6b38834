package identity

import "errors"

var (
	// ErrUserNotFound is returned when a user id cannot be resolved.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when registering an already-taken email.
	ErrEmailExists = errors.New("email already registered")

	// ErrUsernameExists is returned when registering an already-taken username.
	ErrUsernameExists = errors.New("username already taken")

	// ErrInvalidCredentials is returned on a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned when a token fails validation.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrUserInactive is returned when a deactivated user attempts to log in.
	ErrUserInactive = errors.New("user account is deactivated")

	// ErrInvalidRole is returned when an unknown role is requested.
	ErrInvalidRole = errors.New("invalid role")
)
