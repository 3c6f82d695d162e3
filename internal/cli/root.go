// Package cli provides the preflight command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"preflight/internal/balance"
	"preflight/internal/config"
	"preflight/internal/database"
	"preflight/internal/fleet"
	"preflight/internal/models"
	"preflight/internal/readiness"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// ErrNotReady is returned by commands whose verdict is NO-GO
var ErrNotReady = errors.New("aircraft not ready for departure")

// app holds what a command needs once configuration is loaded
type app struct {
	cfg     *config.Config
	db      *database.DB
	fleet   *fleet.Service
	checker *readiness.Service
}

type rootFlags struct {
	configPath string
	dbPath     string
	output     string
	logLevel   string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	cmd, _ := newRootCmd()
	return cmd
}

func newRootCmd() (*cobra.Command, *app) {
	flags := &rootFlags{}
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "preflight",
		Short: "Pre-flight readiness checks for a light-aircraft fleet",
		Long: `preflight decides GO / NO-GO for a planned flight.

It checks engine hours and open defects of the aircraft, the pilot's license,
medical certificate and type rating, and the weight and balance of the
planned load against the aircraft model's limits.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// version, help and completion need no database
			if cmd.Annotations["skipSetup"] == "true" || cmd.Name() == "help" || cmd.Name() == "__complete" {
				return nil
			}
			return a.setup(cmd, flags)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: ./config.yaml or /etc/preflight/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flags.dbPath, "db", "", "path to the SQLite database")
	rootCmd.PersistentFlags().StringVarP(&flags.output, "output", "o", "", "output format (table|json)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newCheckCommand(a))
	rootCmd.AddCommand(newSeedCommand(a))
	rootCmd.AddCommand(newClearCommand(a))
	rootCmd.AddCommand(newAircraftCommand(a))
	rootCmd.AddCommand(newPilotCommand(a))
	rootCmd.AddCommand(newDefectCommand(a))
	rootCmd.AddCommand(newFlightCommand(a))
	rootCmd.AddCommand(newMaintenanceCommand(a))
	rootCmd.AddCommand(newWatchCommand(a))

	return rootCmd, a
}

// Execute runs the root command
func Execute() error {
	rootCmd, a := newRootCmd()
	// Post-run hooks are skipped when a command fails
	defer a.close()

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, ErrNotReady) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return err
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, flags *rootFlags) error {
	if flags.configPath != "" {
		os.Setenv(config.ConfigPathEnv, flags.configPath)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}
	if flags.output != "" {
		cfg.Output = flags.output
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Logs go to stderr so reports on stdout stay machine-readable
	initLogger(cfg, cmd.ErrOrStderr())

	db, err := database.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	profiles, err := buildProfileTable(cfg.Profiles, db.ModelRepository())
	if err != nil {
		db.Close()
		return err
	}

	a.cfg = cfg
	a.db = db
	a.fleet = fleet.NewService(db)
	a.checker = readiness.NewService(db, balance.NewCalculator(profiles))
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func initLogger(cfg *config.Config, w io.Writer) {
	var logLevel slog.Level
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// modelLister is the part of the model repository profiles are resolved against
type modelLister interface {
	List() ([]*models.AircraftModel, error)
}

// buildProfileTable resolves configured profiles to model IDs. A profile's
// model may be given as an ID or as the exact model name.
func buildProfileTable(profiles []config.ProfileConfig, repo modelLister) (*balance.ProfileTable, error) {
	if len(profiles) == 0 {
		return balance.NewProfileTable(nil), nil
	}

	catalog, err := repo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to load aircraft models: %w", err)
	}
	byName := make(map[string]uuid.UUID, len(catalog))
	for _, m := range catalog {
		byName[m.Name] = m.ID
	}

	overrides := make(map[uuid.UUID]balance.Profile, len(profiles))
	for _, p := range profiles {
		id, err := uuid.Parse(p.Model)
		if err != nil {
			var ok bool
			if id, ok = byName[p.Model]; !ok {
				slog.Warn("Balance profile matches no aircraft model", "model", p.Model)
				continue
			}
		}
		overrides[id] = p.Profile()
		slog.Debug("Balance profile loaded", "model", p.Model, "model_id", id)
	}
	return balance.NewProfileTable(overrides), nil
}
