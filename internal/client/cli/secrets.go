package cli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	clientapi "github.com/iudanet/envdev/internal/client/api"
	"github.com/iudanet/envdev/pkg/api"
)

// значения из этих символов печатаются в export без кавычек
var plainEnvValue = regexp.MustCompile(`^[A-Za-z0-9_./:@%+,=-]*$`)

func (c *Cli) runSecrets(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("secrets <list|get|set|rename|rm|export>")
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list", "ls":
		return c.runSecretsList(ctx, rest)
	case "get":
		return c.runSecretsGet(ctx, rest)
	case "set":
		return c.runSecretsSet(ctx, rest)
	case "rename":
		return c.runSecretsRename(ctx, rest)
	case "rm", "delete":
		return c.runSecretsDelete(ctx, rest)
	case "export":
		return c.runSecretsExport(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown secrets command %q", ErrUsage, sub)
	}
}

func (c *Cli) runSecretsList(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("secrets list APP_ID")
	}

	var secrets []api.Secret
	err := c.withAppCredential(ctx, func(token string) error {
		var err error
		secrets, err = c.client.ListSecrets(ctx, token, args[0])
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list secrets: %w", err)
	}

	if len(secrets) == 0 {
		c.io.Println("No secrets found.")
		return nil
	}

	w := c.table()
	_, _ = fmt.Fprintln(w, "NAME\tUPDATED")
	for _, s := range secrets {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", s.Name, formatTime(s.UpdatedAt))
	}
	return w.Flush()
}

// runSecretsGet печатает только значение, чтобы его можно было подставить в shell
func (c *Cli) runSecretsGet(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("secrets get APP_ID NAME")
	}

	var secret *api.SecretValue
	err := c.withAppCredential(ctx, func(token string) error {
		var err error
		secret, err = c.client.GetSecret(ctx, token, args[0], args[1])
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get secret: %w", err)
	}

	c.io.Println(secret.Value)
	return nil
}

func (c *Cli) runSecretsSet(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usageError("secrets set APP_ID NAME [VALUE]")
	}
	appID, name := args[0], args[1]

	var value string
	if len(args) == 3 {
		value = args[2]
	} else {
		var err error
		value, err = c.io.ReadPassword(fmt.Sprintf("Value for %s: ", name))
		if err != nil {
			return fmt.Errorf("failed to read value: %w", err)
		}
	}

	created := true
	err := c.withAppCredential(ctx, func(token string) error {
		_, err := c.client.CreateSecret(ctx, token, appID, api.CreateSecretRequest{Name: name, Value: value})
		if !errors.Is(err, clientapi.ErrConflict) {
			return err
		}

		// секрет уже есть: обновляем значение
		created = false
		_, err = c.client.UpdateSecret(ctx, token, appID, name, api.UpdateSecretRequest{Value: &value})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set secret: %w", err)
	}

	if created {
		c.io.Printf("✓ Secret %s created\n", name)
	} else {
		c.io.Printf("✓ Secret %s updated\n", name)
	}
	return nil
}

func (c *Cli) runSecretsRename(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usageError("secrets rename APP_ID NAME NEW_NAME")
	}

	err := c.withAppCredential(ctx, func(token string) error {
		_, err := c.client.UpdateSecret(ctx, token, args[0], args[1], api.UpdateSecretRequest{Name: &args[2]})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to rename secret: %w", err)
	}

	c.io.Printf("✓ Secret %s renamed to %s\n", args[1], args[2])
	return nil
}

func (c *Cli) runSecretsDelete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("secrets rm APP_ID NAME")
	}

	err := c.withAppCredential(ctx, func(token string) error {
		return c.client.DeleteSecret(ctx, token, args[0], args[1])
	})
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	c.io.Printf("✓ Secret %s deleted\n", args[1])
	return nil
}

// runSecretsExport печатает секреты в формате .env
func (c *Cli) runSecretsExport(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("secrets export APP_ID")
	}

	var export *api.ExportResponse
	err := c.withAppCredential(ctx, func(token string) error {
		var err error
		export, err = c.client.ExportSecrets(ctx, token, args[0])
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to export secrets: %w", err)
	}

	for _, s := range export.Secrets {
		c.io.Printf("%s=%s\n", s.Name, quoteEnvValue(s.Value))
	}
	return nil
}

// quoteEnvValue оборачивает значение в одинарные кавычки в стиле shell
func quoteEnvValue(value string) string {
	if plainEnvValue.MatchString(value) {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
