// ABOUTME: Configuration CLI commands
// ABOUTME: Shows and edits the JSON config file under the XDG config directory
package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"strconv"

	"github.com/harperreed/prospecta/config"
)

// ConfigShowCommand prints the effective configuration. API keys are never
// printed, only whether they are set.
func ConfigShowCommand(cfg *config.Config, path string, args []string) error {
	fs := flag.NewFlagSet("config show", flag.ExitOnError)
	_ = fs.Parse(args)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "Config file: %s\n%s\n", path, data)
	_, _ = fmt.Fprintf(stdout, "ANTHROPIC_API_KEY set: %v\n", cfg.AnthropicAPIKey != "")
	_, _ = fmt.Fprintf(stdout, "GEMINI_API_KEY set:    %v\n", cfg.GeminiAPIKey != "")
	return nil
}

// ConfigSetCommand changes the given settings and saves the file.
func ConfigSetCommand(cfg *config.Config, path string, args []string) error {
	fs := flag.NewFlagSet("config set", flag.ExitOnError)
	backend := fs.String("backend", "", "Storage backend: sqlite, charm or badger")
	dbPath := fs.String("db-path", "", "SQLite database path")
	kvPath := fs.String("kv-path", "", "Local badger directory")
	days := fs.Int("relance-days", 0, "Days without feedback before a relance")
	charmHost := fs.String("charm-host", "", "Charm server host")
	autoSync := fs.String("auto-sync", "", "Sync after every write: true or false")
	provider := fs.String("assistant", "", "Assistant provider: anthropic or gemini")
	model := fs.String("model", "", "Assistant model name")
	_ = fs.Parse(args)

	var parseErr error
	changed := 0
	fs.Visit(func(f *flag.Flag) {
		changed++
		switch f.Name {
		case "backend":
			cfg.Backend = *backend
		case "db-path":
			cfg.DBPath = *dbPath
		case "kv-path":
			cfg.KVPath = *kvPath
		case "relance-days":
			cfg.RelanceThresholdDays = *days
		case "charm-host":
			cfg.CharmHost = *charmHost
		case "auto-sync":
			v, err := strconv.ParseBool(*autoSync)
			if err != nil {
				parseErr = fmt.Errorf("invalid --auto-sync: %w", err)
				return
			}
			cfg.CharmAutoSync = v
		case "assistant":
			cfg.AssistantProvider = *provider
		case "model":
			cfg.AssistantModel = *model
		}
	})
	if parseErr != nil {
		return parseErr
	}
	if changed == 0 {
		return fmt.Errorf("nothing to change; see 'prospecta config set -h'")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "✓ Config saved to %s\n", path)
	return nil
}
