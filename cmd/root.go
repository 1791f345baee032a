package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/sociogram/internal/config"
	"github.com/abhisek/sociogram/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "sociogram",
	Short: "Classroom relationship survey analysis",
	Long: "Sociogram collects peer closeness ratings from a class, analyzes given and\n" +
		"received scores and reciprocal relationships, and drafts narratives for the teacher.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

// settings is loaded once per invocation by setup.
var settings = config.Default()

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SOCIOGRAM_DB and the config file)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/sociogram/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(classCmd)
	rootCmd.AddCommand(studentCmd)
	rootCmd.AddCommand(surveyCmd)
	rootCmd.AddCommand(respondCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(narrateCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads configuration and installs the default logger.
func setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	settings = cfg

	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	})))
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then SOCIOGRAM_DB or the config file, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if settings.DB != "" {
		return settings.DB, store.EnsureDir(settings.DB)
	}
	return store.DefaultDBPath()
}

// openStore opens the database for a command. Callers close it.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// printOut writes styled text to the command's output, downsampling colors
// for the destination.
func printOut(cmd *cobra.Command, s string) {
	lipgloss.Fprint(cmd.OutOrStdout(), s)
}

func printLine(cmd *cobra.Command, format string, args ...any) {
	lipgloss.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}
