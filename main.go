// ABOUTME: Entry point for the LTV sync dashboard client
// ABOUTME: Loads settings, builds the logger and API client, and routes to the TUI or CLI commands
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harperreed/ltvdash/api"
	"github.com/harperreed/ltvdash/cli"
	"github.com/harperreed/ltvdash/logging"
	"github.com/harperreed/ltvdash/settings"
)

const version = "0.1.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	apiURL := flag.String("api-url", "", "Backend URL (default: http://localhost:8000)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (default: info)")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("ltvdash version %s\n", version)
		os.Exit(0)
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fail(fmt.Errorf("failed to load .env: %w", err))
	}

	cfg, err := loadSettings(*apiURL, *logLevel)
	if err != nil {
		fail(err)
	}

	args := flag.Args()
	command := "dashboard"
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	if command == "help" {
		printUsage()
		return
	}

	logger, closer, err := newLogger(command, cfg)
	if err != nil {
		fail(err)
	}
	defer func() { _ = closer.Close() }()

	client := api.NewClient(cfg.APIURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Timeout.Duration),
	)

	switch command {
	case "dashboard":
		err = cli.DashboardCommand(client, cfg, logger, args)
	case "status":
		err = cli.StatusCommand(client, args)
	case "history":
		err = cli.HistoryCommand(client, args)
	case "show":
		err = cli.ShowCommand(client, args)
	case "trigger":
		err = cli.TriggerCommand(client, cfg, logger, args)
	case "watch":
		err = cli.WatchCommand(client, cfg, logger, args)
	case "fields":
		err = cli.FieldsCommand(client, args)
	case "config":
		err = cli.ConfigCommand(client, args)
	case "email-test":
		err = cli.EmailTestCommand(client, args)
	case "mcp":
		err = cli.MCPCommand(client, version, logger)
	case "settings":
		err = cli.SettingsCommand(cfg, args)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", "command", command, "err", err)
		_ = closer.Close()
		fail(err)
	}
}

// loadSettings applies the global flags on top of the file and environment.
func loadSettings(apiURL, logLevel string) (*settings.Settings, error) {
	cfg, err := settings.Load()
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// newLogger sends the dashboard's logs to a file since the TUI owns the
// terminal. Every other command logs to stderr.
func newLogger(command string, cfg *settings.Settings) (*log.Logger, io.Closer, error) {
	if command == "dashboard" {
		return logging.OpenFile(cfg.LogPath(), cfg.LogLevel)
	}
	logger, err := logging.NewStderr(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return logger, io.NopCloser(nil), nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`ltvdash v%s - LTV audience sync dashboard

USAGE:
  ltvdash [global flags] [command] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --api-url <url>        Backend URL (default: http://localhost:8000)
  --log-level <level>    debug, info, warn or error (default: info)

COMMANDS:
  dashboard              Interactive dashboard (default)
  status                 Print config, sync status and the latest history
  history                Print one page of sync history
    --page <n>             Page number (default: 1)
  show <id>              Print one sync run with stats and sample contacts
  trigger                Start a sync
    --wait                 Follow the job until it finishes
  watch                  Print sync start and finish events until interrupted
  fields                 List CRM custom fields
    --query <text>         Filter by name or key
  config show            Show the sync configuration
  config set             Set the LTV field
    --key <key>            Custom field key or ID (required)
    --name <name>          Display name (default: looked up from the CRM)
  email-test             Send a notification test email
  mcp                    Start MCP server on stdio
  settings               Show the effective client settings
    --save                 Write them to the settings file

CONFIGURATION:
  Settings are read from %s and can be
  overridden with LTVDASH_API_URL, LTVDASH_POLL_FAST, LTVDASH_POLL_SLOW,
  LTVDASH_TIMEOUT, LTVDASH_LOG_LEVEL and LTVDASH_LOG_FILE (a .env file in the
  working directory is loaded first).

EXAMPLES:
  # Open the dashboard against a remote backend and remember the URL
  ltvdash --api-url https://ltv.example.com settings --save
  ltvdash

  # Pick the LTV field and run a sync to completion
  ltvdash fields --query lifetime
  ltvdash config set --key contact.lifetime_value
  ltvdash trigger --wait

`, version, settings.Path())
}
