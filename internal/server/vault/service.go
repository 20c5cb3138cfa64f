// Package vault implements the use cases of the credential vault: accounts,
// apps, secrets and user administration, together with the ownership checks
// that guard them.
package vault

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/envdev/internal/crypto"
	"github.com/iudanet/envdev/internal/server/storage"
	"github.com/iudanet/envdev/internal/server/token"
)

// Storage is everything the vault needs from persistence.
type Storage interface {
	storage.UserStorage
	storage.AppStorage
	storage.SecretStorage
}

// Sealer encrypts secret values before they are stored.
// *crypto.Sealer implements it.
type Sealer interface {
	Seal(plaintext []byte) (string, error)
	Open(blob string) ([]byte, error)
}

// TokenService issues and verifies session tokens.
// *token.Service implements it.
type TokenService interface {
	IssueAccessToken(userID string) (string, time.Time, error)
	IssueRefreshToken(userID string) (string, time.Time, error)
	Verify(tokenString string, expected token.Type) (string, error)
}

// Options tune the service.
type Options struct {
	// AdminEmails are registered with the admin role
	AdminEmails []string
	// BcryptCost стоимость bcrypt, 0 означает crypto.DefaultBcryptCost
	BcryptCost int
}

// Service is the vault orchestrator. It is stateless apart from its
// collaborators and safe for concurrent use.
type Service struct {
	store       Storage
	sealer      Sealer
	tokens      TokenService
	logger      *slog.Logger
	now         func() time.Time
	adminEmails map[string]struct{}
	dummyHash   string
	dummyOnce   sync.Once
	bcryptCost  int
}

// New creates the vault service.
func New(store Storage, sealer Sealer, tokens TokenService, logger *slog.Logger, opts Options) *Service {
	cost := opts.BcryptCost
	if cost == 0 {
		cost = crypto.DefaultBcryptCost
	}

	admins := make(map[string]struct{}, len(opts.AdminEmails))
	for _, email := range opts.AdminEmails {
		if email = normalizeEmail(email); email != "" {
			admins[email] = struct{}{}
		}
	}

	return &Service{
		store:       store,
		sealer:      sealer,
		tokens:      tokens,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		adminEmails: admins,
		bcryptCost:  cost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
