package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/envdev/internal/client/auth"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password (min 8 chars): ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	confirmPassword, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}

	if password != confirmPassword {
		return fmt.Errorf("passwords do not match")
	}

	session, err := c.authService.Register(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %s\n", session.UserID)
	c.io.Printf("Email: %s\n", session.Email)
	c.io.Printf("Role: %s\n", session.Role)
	c.io.Println()
	c.io.Println("You are logged in. Run 'envdev apps create NAME' to create your first application.")

	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	session, err := c.authService.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Email: %s\n", session.Email)
	c.io.Printf("Role: %s\n", session.Role)

	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.authService.Logout(ctx); err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			c.io.Println("Not logged in.")
			return nil
		}
		return err
	}

	c.io.Println("✓ Logged out. Local session removed.")
	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()
	c.io.Printf("Server: %s\n", c.client.BaseURL())

	health, err := c.client.Health(ctx)
	if err != nil {
		c.io.Printf("Server status: unreachable (%v)\n", err)
	} else {
		c.io.Printf("Server status: %s", health.Status)
		if health.Version != "" {
			c.io.Printf(" (version %s)", health.Version)
		}
		c.io.Println()
	}

	if c.apiKey != "" {
		c.io.Println("API key: set, application commands use it")
	}

	c.io.Println()
	session, err := c.authService.Session(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			c.io.Println("Session: not logged in")
			c.io.Println("Run 'envdev login' to authenticate.")
			return nil
		}
		return err
	}

	c.io.Println("Session: logged in")
	c.io.Printf("Email: %s\n", session.Email)
	c.io.Printf("Role: %s\n", session.Role)

	expiresAt := time.Unix(session.ExpiresAt, 0)
	if remaining := time.Until(expiresAt); remaining > 0 {
		c.io.Printf("Access token expires in: %s\n", remaining.Round(time.Second))
	} else {
		c.io.Println("Access token expired, it will be refreshed on the next request.")
	}

	return nil
}
