package vault

import (
	"errors"
	"fmt"

	"github.com/iudanet/envdev/internal/crypto"
	"github.com/iudanet/envdev/internal/server/token"
)

// Ошибки сервиса. Транспорт классифицирует их через errors.Is.
var (
	// ErrValidation wraps every input validation failure
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a uniqueness violation (email, secret name)
	ErrConflict = errors.New("already exists")

	// ErrNotFound covers both missing and foreign resources
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned by Login for unknown email and wrong password alike
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is returned for unusable access/refresh tokens and API keys
	ErrInvalidToken = token.ErrInvalidToken

	// ErrDecryption indicates a stored value that cannot be opened
	ErrDecryption = crypto.ErrDecryption

	// ErrAdminRequired is returned when a member calls an admin operation
	ErrAdminRequired = errors.New("admin role required")

	// ErrSelfDeleteRejected is returned when a user tries to delete own account
	ErrSelfDeleteRejected = errors.New("cannot delete own account")

	// ErrUserNotFound is returned by admin operations on a missing user
	ErrUserNotFound = errors.New("user not found")
)

func validationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
