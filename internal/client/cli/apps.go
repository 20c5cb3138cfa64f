package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/envdev/pkg/api"
)

func (c *Cli) runApps(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("apps <list|create|show|rename|describe|delete|regen-key>")
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "list", "ls":
		return c.runAppsList(ctx)
	case "create":
		return c.runAppsCreate(ctx, rest)
	case "show", "get":
		return c.runAppsShow(ctx, rest)
	case "rename":
		return c.runAppsRename(ctx, rest)
	case "describe":
		return c.runAppsDescribe(ctx, rest)
	case "delete", "rm":
		return c.runAppsDelete(ctx, rest)
	case "regen-key":
		return c.runAppsRegenKey(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown apps command %q", ErrUsage, sub)
	}
}

func (c *Cli) runAppsList(ctx context.Context) error {
	var apps []api.App
	err := c.withSession(ctx, func(token string) error {
		var err error
		apps, err = c.client.ListApps(ctx, token)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}

	if len(apps) == 0 {
		c.io.Println("No applications found.")
		c.io.Println()
		c.io.Println("Use 'envdev apps create NAME' to create your first application.")
		return nil
	}

	c.io.Printf("Found %d application(s):\n", len(apps))
	c.io.Println()

	w := c.table()
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSECRETS\tUPDATED\tDESCRIPTION")
	for _, app := range apps {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			app.ID, app.Name, app.SecretCount, formatTime(app.UpdatedAt), deref(app.Description))
	}
	return w.Flush()
}

func (c *Cli) runAppsCreate(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError("apps create NAME [DESCRIPTION]")
	}

	req := api.CreateAppRequest{Name: args[0]}
	if len(args) == 2 {
		req.Description = &args[1]
	}

	var app *api.App
	err := c.withSession(ctx, func(token string) error {
		var err error
		app, err = c.client.CreateApp(ctx, token, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	c.io.Println("✓ Application created successfully!")
	c.printApp(app)
	c.io.Println()
	c.io.Println("⚠️  Keep the API key secret: it grants full access to this application's secrets.")

	return nil
}

func (c *Cli) runAppsShow(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("apps show APP_ID")
	}

	var details *api.AppDetails
	err := c.withAppCredential(ctx, func(token string) error {
		var err error
		details, err = c.client.GetApp(ctx, token, args[0])
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get application: %w", err)
	}

	c.io.Printf("=== %s ===\n", details.Name)
	c.printApp(&details.App)
	c.io.Printf("Created: %s\n", formatTime(details.CreatedAt))
	c.io.Printf("Updated: %s\n", formatTime(details.UpdatedAt))
	c.io.Println()

	if len(details.SecretNames) == 0 {
		c.io.Println("No secrets.")
		return nil
	}

	c.io.Printf("Secrets (%d):\n", len(details.SecretNames))
	for _, name := range details.SecretNames {
		c.io.Printf("  %s\n", name)
	}
	return nil
}

func (c *Cli) runAppsRename(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("apps rename APP_ID NAME")
	}

	return c.updateApp(ctx, args[0], api.UpdateAppRequest{Name: &args[1]})
}

func (c *Cli) runAppsDescribe(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usageError("apps describe APP_ID [TEXT]")
	}

	// без TEXT описание очищается
	description := ""
	if len(args) == 2 {
		description = args[1]
	}

	return c.updateApp(ctx, args[0], api.UpdateAppRequest{Description: &description})
}

func (c *Cli) updateApp(ctx context.Context, appID string, req api.UpdateAppRequest) error {
	var app *api.App
	err := c.withSession(ctx, func(token string) error {
		var err error
		app, err = c.client.UpdateApp(ctx, token, appID, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}

	c.io.Println("✓ Application updated successfully!")
	c.io.Printf("Name: %s\n", app.Name)
	c.io.Printf("Description: %s\n", deref(app.Description))
	return nil
}

func (c *Cli) runAppsDelete(ctx context.Context, args []string) error {
	args, yes := splitYes(args)
	if len(args) != 1 {
		return usageError("apps delete APP_ID [--yes]")
	}
	appID := args[0]

	ok, err := c.confirm(fmt.Sprintf("Delete application %s and all its secrets?", appID), yes)
	if err != nil {
		return err
	}
	if !ok {
		c.io.Println("Deletion cancelled.")
		return nil
	}

	err = c.withSession(ctx, func(token string) error {
		return c.client.DeleteApp(ctx, token, appID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}

	c.io.Println("✓ Application deleted successfully!")
	return nil
}

func (c *Cli) runAppsRegenKey(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("apps regen-key APP_ID")
	}

	var app *api.App
	err := c.withSession(ctx, func(token string) error {
		var err error
		app, err = c.client.RegenerateAPIKey(ctx, token, args[0])
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to regenerate API key: %w", err)
	}

	c.io.Println("✓ API key regenerated. The previous key no longer works.")
	c.io.Printf("API key: %s\n", app.APIKey)
	return nil
}

func (c *Cli) printApp(app *api.App) {
	c.io.Printf("ID: %s\n", app.ID)
	c.io.Printf("Name: %s\n", app.Name)
	if app.Description != nil && *app.Description != "" {
		c.io.Printf("Description: %s\n", *app.Description)
	}
	if app.APIKey != "" {
		c.io.Printf("API key: %s\n", app.APIKey)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
