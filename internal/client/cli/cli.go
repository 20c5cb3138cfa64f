// Package cli реализует команды клиента envdev.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/iudanet/envdev/internal/client/auth"
	"github.com/iudanet/envdev/internal/client/iocli"
	"github.com/iudanet/envdev/pkg/api"
)

//go:generate moq -out vault_mock.go . VaultAPI

// VaultAPI описывает вызовы сервера, которые использует CLI
type VaultAPI interface {
	BaseURL() string
	Health(ctx context.Context) (*api.HealthResponse, error)
	Me(ctx context.Context, token string) (*api.User, error)

	ListApps(ctx context.Context, token string) ([]api.App, error)
	CreateApp(ctx context.Context, token string, req api.CreateAppRequest) (*api.App, error)
	GetApp(ctx context.Context, token, appID string) (*api.AppDetails, error)
	UpdateApp(ctx context.Context, token, appID string, req api.UpdateAppRequest) (*api.App, error)
	DeleteApp(ctx context.Context, token, appID string) error
	RegenerateAPIKey(ctx context.Context, token, appID string) (*api.App, error)

	ListSecrets(ctx context.Context, token, appID string) ([]api.Secret, error)
	CreateSecret(ctx context.Context, token, appID string, req api.CreateSecretRequest) (*api.Secret, error)
	GetSecret(ctx context.Context, token, appID, name string) (*api.SecretValue, error)
	ExportSecrets(ctx context.Context, token, appID string) (*api.ExportResponse, error)
	UpdateSecret(ctx context.Context, token, appID, name string, req api.UpdateSecretRequest) (*api.Secret, error)
	DeleteSecret(ctx context.Context, token, appID, name string) error

	ListUsers(ctx context.Context, token string) ([]api.User, error)
	GetUser(ctx context.Context, token, userID string) (*api.UserDetails, error)
	SetRole(ctx context.Context, token, userID, role string) (*api.User, error)
	DeleteUser(ctx context.Context, token, userID string) error
}

// ErrUsage возвращается при неверных аргументах команды
var ErrUsage = errors.New("invalid usage")

type Cli struct {
	io          iocli.IO
	client      VaultAPI
	authService *auth.Service
	apiKey      string // если задан, команды уровня приложения идут с ним
}

func New(io iocli.IO, client VaultAPI, authService *auth.Service, apiKey string) *Cli {
	return &Cli{
		io:          io,
		client:      client,
		authService: authService,
		apiKey:      apiKey,
	}
}

// Run выполняет команду args[0] с остальными аргументами
func (c *Cli) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		c.PrintUsage()
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "apps", "app":
		return c.runApps(ctx, rest)
	case "secrets", "secret":
		return c.runSecrets(ctx, rest)
	case "users", "user":
		return c.runUsers(ctx, rest)
	case "help":
		c.PrintUsage()
		return nil
	default:
		c.PrintUsage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, command)
	}
}

func (c *Cli) PrintUsage() {
	c.io.Println("envdev - per-application secret vault")
	c.io.Println()
	c.io.Println("Usage:")
	c.io.Println("  envdev [OPTIONS] COMMAND [ARGS]")
	c.io.Println()
	c.io.Println("Options:")
	c.io.Println("  --version          Show version information")
	c.io.Println("  --server URL       Server URL (default: $ENVDEV_SERVER or http://localhost:8080)")
	c.io.Println("  --db PATH          Path to local session database (default: envdev-client.db)")
	c.io.Println("  --api-key KEY      Application API key (default: $ENVDEV_API_KEY)")
	c.io.Println()
	c.io.Println("Account:")
	c.io.Println("  register                          Create an account and log in")
	c.io.Println("  login                             Log in to the server")
	c.io.Println("  logout                            Forget the local session")
	c.io.Println("  status                            Show session and server status")
	c.io.Println()
	c.io.Println("Applications:")
	c.io.Println("  apps list                         List your applications")
	c.io.Println("  apps create NAME [DESCRIPTION]    Create an application")
	c.io.Println("  apps show APP_ID                  Show application, API key and secret names")
	c.io.Println("  apps rename APP_ID NAME           Rename an application")
	c.io.Println("  apps describe APP_ID [TEXT]       Set description (empty clears it)")
	c.io.Println("  apps delete APP_ID [--yes]        Delete an application and its secrets")
	c.io.Println("  apps regen-key APP_ID             Issue a new API key")
	c.io.Println()
	c.io.Println("Secrets:")
	c.io.Println("  secrets list APP_ID               List secret names")
	c.io.Println("  secrets get APP_ID NAME           Print a secret value")
	c.io.Println("  secrets set APP_ID NAME [VALUE]   Create or update a secret (prompts if VALUE omitted)")
	c.io.Println("  secrets rename APP_ID NAME NEW    Rename a secret")
	c.io.Println("  secrets rm APP_ID NAME            Delete a secret")
	c.io.Println("  secrets export APP_ID             Print all secrets as NAME=value lines")
	c.io.Println()
	c.io.Println("Administration (admin only):")
	c.io.Println("  users list                        List users")
	c.io.Println("  users show USER_ID                Show a user and their applications")
	c.io.Println("  users role USER_ID member|admin   Change a user's role")
	c.io.Println("  users delete USER_ID [--yes]      Delete a user and everything they own")
	c.io.Println()
	c.io.Println("Examples:")
	c.io.Println("  envdev --server https://vault.example.com login")
	c.io.Println("  envdev apps create billing 'Billing service'")
	c.io.Println("  envdev secrets set 3f6c... DATABASE_URL")
	c.io.Println("  ENVDEV_API_KEY=envdev_... envdev secrets export 3f6c... > .env")
}

// withSession выполняет fn с access token текущей сессии
func (c *Cli) withSession(ctx context.Context, fn func(token string) error) error {
	return c.authService.WithAccessToken(ctx, fn)
}

// withAppCredential предпочитает API key приложения, если он задан
func (c *Cli) withAppCredential(ctx context.Context, fn func(token string) error) error {
	if c.apiKey != "" {
		return fn(c.apiKey)
	}
	return c.withSession(ctx, fn)
}

// confirm спрашивает подтверждение, если в args нет --yes
func (c *Cli) confirm(prompt string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}

	answer, err := c.io.ReadInput(prompt + " (yes/no): ")
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "yes" || answer == "y", nil
}

// splitYes убирает флаг подтверждения из аргументов
func splitYes(args []string) ([]string, bool) {
	rest := make([]string, 0, len(args))
	yes := false
	for _, a := range args {
		if a == "--yes" || a == "-y" {
			yes = true
			continue
		}
		rest = append(rest, a)
	}
	return rest, yes
}

func (c *Cli) table() *tabwriter.Writer {
	return tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func usageError(usage string) error {
	return fmt.Errorf("%w. Usage: envdev %s", ErrUsage, usage)
}
