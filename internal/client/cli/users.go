package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/envdev/pkg/api"
)

func (c *Cli) runUsers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("users <list|show|role|delete>")
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list", "ls":
		return c.runUsersList(ctx)
	case "show", "get":
		return c.runUsersShow(ctx, rest)
	case "role":
		return c.runUsersRole(ctx, rest)
	case "delete", "rm":
		return c.runUsersDelete(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown users command %q", ErrUsage, sub)
	}
}

func (c *Cli) runUsersList(ctx context.Context) error {
	var users []api.User
	err := c.withSession(ctx, func(token string) error {
		var err error
		users, err = c.client.ListUsers(ctx, token)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	c.io.Printf("Found %d user(s):\n", len(users))
	c.io.Println()

	w := c.table()
	_, _ = fmt.Fprintln(w, "ID\tEMAIL\tROLE\tAPPS\tCREATED")
	for _, u := range users {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", u.ID, u.Email, u.Role, u.AppCount, formatTime(u.CreatedAt))
	}
	return w.Flush()
}

func (c *Cli) runUsersShow(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("users show USER_ID")
	}

	var user *api.UserDetails
	err := c.withSession(ctx, func(token string) error {
		var err error
		user, err = c.client.GetUser(ctx, token, args[0])
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	c.io.Printf("=== %s ===\n", user.Email)
	c.io.Printf("ID: %s\n", user.ID)
	c.io.Printf("Role: %s\n", user.Role)
	c.io.Printf("Created: %s\n", formatTime(user.CreatedAt))
	c.io.Println()

	if len(user.Apps) == 0 {
		c.io.Println("No applications.")
		return nil
	}

	w := c.table()
	_, _ = fmt.Fprintln(w, "APP ID\tNAME\tSECRETS")
	for _, app := range user.Apps {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\n", app.ID, app.Name, app.SecretCount)
	}
	return w.Flush()
}

func (c *Cli) runUsersRole(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("users role USER_ID member|admin")
	}

	var user *api.User
	err := c.withSession(ctx, func(token string) error {
		var err error
		user, err = c.client.SetRole(ctx, token, args[0], args[1])
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to change role: %w", err)
	}

	c.io.Printf("✓ %s is now %s\n", user.Email, user.Role)
	return nil
}

func (c *Cli) runUsersDelete(ctx context.Context, args []string) error {
	args, yes := splitYes(args)
	if len(args) != 1 {
		return usageError("users delete USER_ID [--yes]")
	}
	userID := args[0]

	ok, err := c.confirm(fmt.Sprintf("Delete user %s with all applications and secrets?", userID), yes)
	if err != nil {
		return err
	}
	if !ok {
		c.io.Println("Deletion cancelled.")
		return nil
	}

	err = c.withSession(ctx, func(token string) error {
		return c.client.DeleteUser(ctx, token, userID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	c.io.Println("✓ User deleted successfully!")
	return nil
}
