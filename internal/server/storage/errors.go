package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrAppNotFound indicates that app was not found in storage
	ErrAppNotFound = errors.New("app not found")

	// ErrAPIKeyAlreadyExists indicates an api key collision
	ErrAPIKeyAlreadyExists = errors.New("api key already exists")

	// ErrSecretNotFound indicates that secret was not found in the app
	ErrSecretNotFound = errors.New("secret not found")

	// ErrSecretAlreadyExists indicates that the app already has a secret with this name
	ErrSecretAlreadyExists = errors.New("secret already exists")
)
