// ABOUTME: Configuration CLI commands
// ABOUTME: Lists CRM custom fields, shows and sets the LTV field, sends the test email
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/ltvdash/dashboard"
	"github.com/harperreed/ltvdash/models"
)

// FieldsCommand lists the CRM custom fields that can serve as the LTV source.
func FieldsCommand(backend dashboard.Backend, args []string) error {
	fs := flag.NewFlagSet("fields", flag.ExitOnError)
	query := fs.String("query", "", "Only show fields whose name or key contains this text")
	_ = fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	fields, err := backend.GetCustomFields(ctx)
	if err != nil {
		return fmt.Errorf("failed to load custom fields: %w", err)
	}

	q := strings.ToLower(*query)
	var shown []models.CustomField
	for _, f := range fields {
		if q == "" || strings.Contains(strings.ToLower(f.Name), q) || strings.Contains(strings.ToLower(f.Key()), q) {
			shown = append(shown, f)
		}
	}

	if len(shown) == 0 {
		_, _ = fmt.Fprintln(stdout, "No custom fields found")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tKEY\tID")
	_, _ = fmt.Fprintln(w, "----\t---\t--")
	for _, f := range shown {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, f.Key(), f.ID)
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(stdout, "\nTotal: %d field(s)\n", len(shown))
	return nil
}

// ConfigCommand routes "config show" and "config set".
func ConfigCommand(backend dashboard.Backend, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("config requires a subcommand: show or set")
	}

	switch args[0] {
	case "show":
		return configShow(backend)
	case "set":
		return configSet(backend, args[1:])
	default:
		return fmt.Errorf("unknown config subcommand: %s", args[0])
	}
}

func configShow(backend dashboard.Backend) error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	env, err := backend.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	printConfig(stdout, env)
	return nil
}

// configSet saves the LTV field. The key is matched against the CRM's
// custom fields so the stored name is the CRM's own; --name overrides it.
func configSet(backend dashboard.Backend, args []string) error {
	fs := flag.NewFlagSet("config set", flag.ExitOnError)
	key := fs.String("key", "", "Custom field key or ID (required)")
	name := fs.String("name", "", "Display name (default: looked up from the CRM)")
	_ = fs.Parse(args)

	if *key == "" {
		return fmt.Errorf("--key is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	field := models.CustomField{ID: *key, FieldKey: *key, Name: *name}
	if field.Name == "" {
		fields, err := backend.GetCustomFields(ctx)
		if err != nil {
			return fmt.Errorf("failed to look up field name: %w", err)
		}
		found := false
		for _, f := range fields {
			if f.Key() == *key || f.ID == *key {
				field = f
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no custom field with key %q (see 'ltvdash fields')", *key)
		}
	}

	cfg, err := backend.SaveConfig(ctx, models.ConfigPayload{LTVFieldKey: field.Key(), LTVFieldName: field.Name})
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ LTV field set: %s (%s)\n", cfg.LTVFieldName, cfg.LTVFieldKey)
	return nil
}

// EmailTestCommand asks the backend to send its notification test email.
func EmailTestCommand(backend dashboard.Backend, args []string) error {
	fs := flag.NewFlagSet("email-test", flag.ExitOnError)
	_ = fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	result, err := backend.SendTestEmail(ctx)
	if err != nil {
		return fmt.Errorf("failed to send test email: %w", err)
	}

	msg := "Test email sent successfully!"
	if result != nil && result.Message != "" {
		msg = result.Message
	}
	_, _ = fmt.Fprintf(stdout, "✓ %s\n", msg)
	return nil
}
