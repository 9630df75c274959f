// ABOUTME: Entry point for the prospecta MCP server, CLI and TUI
// ABOUTME: Loads config, opens the configured backend and routes commands
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/harperreed/prospecta/assistant"
	"github.com/harperreed/prospecta/charm"
	"github.com/harperreed/prospecta/cli"
	"github.com/harperreed/prospecta/config"
	"github.com/harperreed/prospecta/crm"
	"github.com/harperreed/prospecta/db"
	"github.com/harperreed/prospecta/store"
	"github.com/harperreed/prospecta/tui"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "SQLite database path (default: ~/.local/share/prospecta/prospecta.db)")
	backend := flag.String("backend", "", "Storage backend: sqlite, charm or badger")
	verbose := flag.Bool("verbose", false, "Log debug output to stderr")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("prospecta version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	logger := newLogger(*verbose)
	defer func() { _ = logger.Sync() }()
	undo := zap.ReplaceGlobals(logger)
	defer undo()

	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("ignoring .env", zap.Error(err))
	}
	cfgPath := config.Path()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal(err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *backend != "" {
		cfg.Backend = *backend
		if err := cfg.Validate(); err != nil {
			fatal(err)
		}
	}

	command := args[0]
	commandArgs := args[1:]
	ctx := context.Background()

	// Commands that need no store.
	switch command {
	case "config":
		runConfig(cfg, cfgPath, commandArgs)
		return
	case "mail":
		runMail(commandArgs)
		return
	case "sync":
		runSync(cfg, commandArgs)
		return
	}

	svc, closeStore, err := openService(cfg, logger)
	if err != nil {
		fatal(err)
	}
	defer closeStore()

	gen, err := assistant.New(ctx, cfg.AssistantOptions())
	if err != nil {
		logger.Debug("assistant disabled", zap.Error(err))
		gen = nil
	}

	switch command {
	case "mcp":
		if err := cli.MCPCommand(svc, gen, version); err != nil {
			fatal(fmt.Errorf("MCP server failed: %w", err))
		}

	case "crm":
		if len(commandArgs) == 0 {
			fmt.Println("Error: crm requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		runCRM(svc, gen, commandArgs[0], commandArgs[1:])

	case "tui":
		p := tea.NewProgram(tui.NewModel(ctx, svc), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			fatal(fmt.Errorf("TUI failed: %w", err))
		}

	case "viz":
		if len(commandArgs) == 0 {
			fmt.Println("Error: viz requires a subcommand")
			printUsage()
			os.Exit(1)
		}
		switch commandArgs[0] {
		case "pipeline":
			check(cli.VizPipelineCommand(svc, commandArgs[1:]))
		case "dashboard":
			check(cli.VizDashboardCommand(svc, commandArgs[1:]))
		default:
			fmt.Printf("Unknown viz command: %s\n\n", commandArgs[0])
			printUsage()
			os.Exit(1)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runCRM(svc *crm.Service, gen assistant.Generator, command string, args []string) {
	switch command {
	// Prospect commands
	case "add-prospect":
		check(cli.AddProspectCommand(svc, args))
	case "list-prospects":
		check(cli.ListProspectsCommand(svc, args))
	case "show-prospect":
		check(cli.ShowProspectCommand(svc, args))
	case "update-prospect":
		check(cli.UpdateProspectCommand(svc, args))
	case "delete-prospect":
		check(cli.DeleteProspectCommand(svc, args))

	// Stage commands
	case "set-stage":
		check(cli.SetStageCommand(svc, args))
	case "advance":
		check(cli.AdvanceCommand(svc, args))
	case "retreat":
		check(cli.RetreatCommand(svc, args))

	// Contact commands
	case "list-contacts":
		check(cli.ListContactsCommand(svc, args))
	case "edit-contacts":
		check(cli.EditContactsCommand(svc, args))

	// Sample commands
	case "send-sample":
		check(cli.SendSampleCommand(svc, args))
	case "feedback":
		check(cli.FeedbackCommand(svc, args))
	case "list-samples":
		check(cli.ListSamplesCommand(svc, args))
	case "relances":
		check(cli.RelancesCommand(svc, args))
	case "draft-email":
		check(cli.DraftEmailCommand(svc, gen, cli.GmailDrafts, args))

	// Activity commands
	case "log":
		check(cli.LogCommand(svc, args))
	case "history":
		check(cli.HistoryCommand(svc, args))
	case "log-voice":
		check(cli.LogVoiceCommand(svc, gen, args))

	default:
		fmt.Printf("Unknown crm command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runConfig(cfg *config.Config, path string, args []string) {
	if len(args) == 0 {
		check(cli.ConfigShowCommand(cfg, path, nil))
		return
	}
	switch args[0] {
	case "show":
		check(cli.ConfigShowCommand(cfg, path, args[1:]))
	case "set":
		check(cli.ConfigSetCommand(cfg, path, args[1:]))
	default:
		fmt.Printf("Unknown config command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func runMail(args []string) {
	if len(args) == 0 || args[0] != "init" {
		fmt.Println("Error: mail requires the init subcommand")
		printUsage()
		os.Exit(1)
	}
	check(cli.MailInitCommand(args[1:]))
}

func runSync(cfg *config.Config, args []string) {
	if len(args) == 0 {
		fmt.Println("Error: sync requires a subcommand")
		printUsage()
		os.Exit(1)
	}
	if args[0] == "unlink" {
		check(charm.SyncUnlinkCommand(args[1:]))
		return
	}

	client, closeKV, err := openKV(cfg)
	if err != nil {
		fatal(err)
	}
	defer closeKV()

	switch args[0] {
	case "link":
		check(charm.SyncLinkCommand(client, args[1:]))
	case "status":
		check(charm.SyncStatusCommand(client, args[1:]))
	case "now":
		check(charm.SyncNowCommand(client, args[1:]))
	case "wipe":
		check(charm.SyncWipeCommand(client, args[1:]))
	default:
		fmt.Printf("Unknown sync command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// openKV opens the local badger store for the badger backend and the
// Charm server for everything else.
func openKV(cfg *config.Config) (*charm.Client, func(), error) {
	if cfg.Backend == config.BackendBadger {
		client, bkv, err := charm.OpenLocal(cfg.KVPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open local store: %w", err)
		}
		return client, func() { _ = bkv.Close() }, nil
	}
	client, err := charm.Open(cfg.CharmConfig())
	if err != nil {
		return nil, nil, err
	}
	return client, func() {}, nil
}

func openService(cfg *config.Config, logger *zap.Logger) (*crm.Service, func(), error) {
	var (
		st      store.Store
		closeFn = func() {}
	)

	switch cfg.Backend {
	case config.BackendSQLite:
		database, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		logger.Debug("opened sqlite store", zap.String("path", cfg.DBPath))
		st = db.NewStore(database)
		closeFn = func() { _ = database.Close() }
	case config.BackendCharm, config.BackendBadger:
		client, closeKV, err := openKV(cfg)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("opened kv store", zap.String("backend", cfg.Backend))
		st = charm.NewStore(client)
		closeFn = closeKV
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	svc := crm.NewService(st,
		crm.WithLogger(logger),
		crm.WithRelanceThreshold(cfg.RelanceThresholdDays),
	)
	return svc, closeFn, nil
}

func newLogger(verbose bool) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "console"
	zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func check(err error) {
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`prospecta v%s - Sales pipeline for B2B ingredient prospection

USAGE:
  prospecta [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       SQLite database path (default: ~/.local/share/prospecta/prospecta.db)
  --backend <name>       Storage backend: sqlite, charm or badger
  --verbose              Log debug output to stderr

COMMANDS:
  mcp                    Start MCP server for Claude Desktop
  crm                    Prospect, contact, sample and activity commands
  tui                    Interactive pipeline board
  viz                    Pipeline graph and dashboard
  sync                   Charm KV sync (link, status, now, unlink, wipe)
  mail init              Authorize Gmail draft creation
  config                 Show or change settings (show, set)

CRM COMMANDS:
  prospecta crm add-prospect     Add a prospect
    --name <name>                  Company name (required)
    --stage <stage>                Starting stage (default: prospection)
    --country <country>            Country
    --volume <volume>              Potential volume
    --notes <notes>                Notes

  prospecta crm list-prospects   List prospects, most recently active first
    --stage <stage>                Filter by stage

  prospecta crm show-prospect <id>
  prospecta crm update-prospect [flags] <id>  Edit name, country, volume or notes
  prospecta crm delete-prospect <id>          Delete a prospect and everything it owns

  prospecta crm set-stage <id> <stage>        Set any stage, including lost
  prospecta crm advance <id>                  Move one stage forward
  prospecta crm retreat <id>                  Move one stage back

  prospecta crm list-contacts [--json] <id>   --json exports an editable list
  prospecta crm edit-contacts --file <path|-> <id>
                                   Reconcile an edited contact list

  prospecta crm send-sample --product <name> [--ref <ref>] [--date YYYY-MM-DD] <id>
  prospecta crm feedback --text <feedback> [--status <status>] <sample-id>
  prospecta crm list-samples <id>
  prospecta crm relances                      Samples waiting for feedback

  Note: flags must come before the positional id (or pass --prospect / --sample).
  prospecta crm draft-email [flags] <sample-id>  Draft a follow-up email
    --record                       Log the draft as a Note
    --gmail --to <email>           Save it as a Gmail draft

  prospecta crm log --text <text> [--type Note|Sample|Meeting] [--date YYYY-MM-DD] <id>
  prospecta crm history <id>
  prospecta crm log-voice --file <audio> <id>  Transcribe a voice memo into a Note

VIZ COMMANDS:
  prospecta viz pipeline [--prospects] [--output <file>]
  prospecta viz dashboard

EXAMPLES:
  # Start MCP server for Claude Desktop
  prospecta mcp

  # Add a prospect and send it a sample
  prospecta crm add-prospect --name "Nutrifoods" --country France
  prospecta crm send-sample --product "Inuline HP" --ref LOT-42 1

  # Samples overdue for a follow-up
  prospecta crm relances

`, version)
}
