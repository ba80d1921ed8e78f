// ABOUTME: Local settings CLI command
// ABOUTME: Prints the effective client settings and optionally writes them to the settings file
package cli

import (
	"flag"
	"fmt"

	"github.com/harperreed/ltvdash/settings"
)

// SettingsCommand shows the settings after file, environment and flag
// overrides. With --save it persists them so later runs need no flags.
func SettingsCommand(cfg *settings.Settings, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	save := fs.Bool("save", false, "Write the effective settings to the settings file")
	_ = fs.Parse(args)

	_, _ = fmt.Fprintf(stdout, "Settings file: %s\n\n", settings.Path())
	_, _ = fmt.Fprintf(stdout, "  API URL:       %s\n", cfg.APIURL)
	_, _ = fmt.Fprintf(stdout, "  Poll (fast):   %s\n", cfg.FastInterval.Duration)
	_, _ = fmt.Fprintf(stdout, "  Poll (slow):   %s\n", cfg.SlowInterval.Duration)
	_, _ = fmt.Fprintf(stdout, "  Timeout:       %s\n", cfg.Timeout.Duration)
	_, _ = fmt.Fprintf(stdout, "  Log level:     %s\n", cfg.LogLevel)
	_, _ = fmt.Fprintf(stdout, "  Log file:      %s\n", cfg.LogPath())

	if !*save {
		return nil
	}
	if err := settings.Save(cfg); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "\n✓ Settings saved\n")
	return nil
}
