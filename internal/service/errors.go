// Package service holds the authentication and RBAC business logic.
// It sits between the HTTP handlers and the repositories and talks to
// storage only through the store interfaces declared in stores.go.
package service

import "errors"

var (
	// ErrInvalidCredentials is returned by Login for a wrong password
	// and for an unknown username alike. Callers must not be able to
	// tell the two apart, otherwise the endpoint can be used to
	// enumerate usernames.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken is returned by Refresh when the presented
	// token is unknown, revoked or past its expiry.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrUsernameRequired is returned when a user is created or
	// updated without a username.
	ErrUsernameRequired = errors.New("username cannot be empty")
	// ErrPasswordRequired is returned when a user is created or
	// updated without a password.
	ErrPasswordRequired = errors.New("password cannot be empty")
	// ErrInvalidEmail is returned when an email does not match the
	// expected local@domain.tld shape.
	ErrInvalidEmail = errors.New("invalid email format")
)
