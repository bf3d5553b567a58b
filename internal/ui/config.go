package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/quorum/internal/config"
	"github.com/javiermolinar/quorum/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Interactive configuration management.

If no config file exists, creates one with default values.
Otherwise, displays current config and allows editing.

Example:
  quorum config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), config.DefaultConfigPath())
		},
	}
}

func runConfigInteractive(in io.Reader, out io.Writer, configPath string) error {
	fmt.Fprintf(out, "Config file: %s\n\n", configPath)

	// Load existing config or create defaults
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Check if file exists
	_, fileErr := os.Stat(configPath)
	isNew := os.IsNotExist(fileErr)

	if isNew {
		fmt.Fprintln(out, "No config file found. Creating with default values...")
		if err := cfg.SaveTo(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n\n", configPath)
	}

	printConfig(out, cfg)

	reader := bufio.NewReader(in)
	if !promptYesNo(reader, out, "\nWould you like to edit the configuration?") {
		return nil
	}

	p := prompter{reader: reader, out: out}
	cfg.Event.DayStart = p.value("Default day start", cfg.Event.DayStart)
	cfg.Event.DayEnd = p.value("Default day end", cfg.Event.DayEnd)
	cfg.Event.SlotMinutes = p.int("Default slot minutes (15-120)", cfg.Event.SlotMinutes)
	cfg.Event.Timezone = p.value("Default timezone", cfg.Event.Timezone)
	cfg.Storage.Driver = p.value("Storage driver (sqlite, postgres)", cfg.Storage.Driver)
	if cfg.Storage.Driver == config.DriverPostgres {
		cfg.Storage.DSN = p.value("Postgres DSN", cfg.Storage.DSN)
	} else {
		cfg.Storage.DBPath = p.value("Database path", cfg.Storage.DBPath)
	}
	cfg.Server.Addr = p.value("HTTP listen address", cfg.Server.Addr)
	cfg.Cache.RedisAddr = p.value("Redis address (empty to disable)", cfg.Cache.RedisAddr)
	cfg.Worker.RetentionDays = p.int("Retention days", cfg.Worker.RetentionDays)
	cfg.UI.Theme = p.theme(cfg.UI.Theme)
	cfg.UI.TapToToggle = p.bool("Tap to toggle", cfg.UI.TapToToggle)

	// Validate before saving
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.SaveTo(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Fprintln(out, "\nConfiguration saved!")
	return nil
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out, "──────────────────────")
	fmt.Fprintln(out, "[event]")
	fmt.Fprintf(out, "  day_start        = %s\n", cfg.Event.DayStart)
	fmt.Fprintf(out, "  day_end          = %s\n", cfg.Event.DayEnd)
	fmt.Fprintf(out, "  slot_minutes     = %d\n", cfg.Event.SlotMinutes)
	fmt.Fprintf(out, "  timezone         = %s\n", cfg.Event.Timezone)
	fmt.Fprintln(out, "\n[storage]")
	fmt.Fprintf(out, "  driver           = %s\n", cfg.Storage.Driver)
	if cfg.Storage.Driver == config.DriverPostgres {
		fmt.Fprintf(out, "  dsn              = %s\n", redact(cfg.Storage.DSN))
	} else {
		fmt.Fprintf(out, "  db_path          = %s\n", cfg.Storage.DBPath)
	}
	fmt.Fprintln(out, "\n[server]")
	fmt.Fprintf(out, "  addr             = %s\n", cfg.Server.Addr)
	fmt.Fprintln(out, "\n[cache]")
	if cfg.HasRedis() {
		fmt.Fprintf(out, "  redis_addr       = %s\n", cfg.Cache.RedisAddr)
		fmt.Fprintf(out, "  redis_db         = %d\n", cfg.Cache.RedisDB)
	} else {
		fmt.Fprintf(out, "  redis_addr       = %s\n", formatMuted("(disabled)"))
	}
	fmt.Fprintf(out, "  ttl_seconds      = %d\n", cfg.Cache.TTLSeconds)
	fmt.Fprintln(out, "\n[worker]")
	fmt.Fprintf(out, "  cleanup_schedule = %s\n", cfg.Worker.CleanupSchedule)
	fmt.Fprintf(out, "  retention_days   = %d\n", cfg.Worker.RetentionDays)
	fmt.Fprintf(out, "  concurrency      = %d\n", cfg.Worker.Concurrency)
	fmt.Fprintln(out, "\n[ui]")
	fmt.Fprintf(out, "  theme            = %s\n", cfg.UI.Theme)
	fmt.Fprintf(out, "  tap_to_toggle    = %t\n", cfg.UI.TapToToggle)
	fmt.Fprintln(out, "\n[log]")
	fmt.Fprintf(out, "  dir              = %s\n", cfg.Log.Dir)
}

// redact hides the password of a connection URL.
func redact(dsn string) string {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		return dsn
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return dsn
	}
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return dsn
	}
	return scheme + "://" + user + ":****@" + host
}

func promptYesNo(reader *bufio.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}

// prompter asks for values on out, keeping the current one on empty input.
type prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func (p prompter) value(label, current string) string {
	if current == "" {
		fmt.Fprintf(p.out, "  %s: ", label)
	} else {
		fmt.Fprintf(p.out, "  %s [%s]: ", label, current)
	}
	input, _ := p.reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func (p prompter) int(label string, current int) int {
	for {
		value := p.value(label, strconv.Itoa(current))
		n, err := strconv.Atoi(value)
		if err == nil {
			return n
		}
		fmt.Fprintf(p.out, "  Invalid number %q\n", value)
	}
}

func (p prompter) bool(label string, current bool) bool {
	for {
		value := p.value(label+" (true/false)", strconv.FormatBool(current))
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
		fmt.Fprintf(p.out, "  Invalid value %q\n", value)
	}
}

func (p prompter) theme(current string) string {
	options := strings.Join(theme.Available(), ", ")
	label := fmt.Sprintf("UI theme (%s)", options)
	if !theme.IsAvailable(current) {
		current = theme.Available()[0]
	}
	for {
		value := strings.ToLower(p.value(label, current))
		if theme.IsAvailable(value) {
			return value
		}
		fmt.Fprintf(p.out, "  Invalid theme %q. Available: %s\n", value, options)
	}
}
