package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"cq-suite/src/config"
	"cq-suite/src/service/tool"
	"cq-suite/src/util"
)

// Handler handles CLI commands
type Handler struct {
	cfg        *config.Config
	loader     *config.Loader
	configPath string
	logLevel   string
	exec       tool.Executor
	rootCmd    *cobra.Command
}

// New creates a new CLI handler
func New() *Handler {
	h := &Handler{loader: config.NewLoader()}
	h.setupCommands()
	return h
}

func (h *Handler) setupCommands() {
	h.rootCmd = &cobra.Command{
		Use:   "cq",
		Short: "Code quality analysis suite for Python projects",
		Long: "Runs pylint, vulture, coverage.py and built-in analyzers against a configured Python project\n" +
			"and writes uniform JSON reports.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return h.loadConfig()
		},
	}

	// Global flags
	h.rootCmd.PersistentFlags().StringVarP(&h.configPath, "config", "c", "",
		"Path to the active configuration file (default $HOME/.cq-suite/"+config.ActiveConfigFile+")")
	h.rootCmd.PersistentFlags().StringVar(&h.logLevel, "log-level", "",
		"Log level override (debug, info, warn, error)")

	// Add subcommands
	h.rootCmd.AddCommand(h.configureCmd())
	h.rootCmd.AddCommand(h.runCmd())
	h.rootCmd.AddCommand(h.filesCmd())
	h.rootCmd.AddCommand(h.toolsCmd())
	h.rootCmd.AddCommand(h.versionCmd())
}

func (h *Handler) loadConfig() error {
	cfg, err := h.loader.Load(h.configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if h.logLevel != "" {
		cfg.Logging.Level = h.logLevel
	}
	h.cfg = cfg

	// Initialize logger from config
	util.SetDefaultLogger(cfg.Logging)
	util.Debug("Configuration loaded from %s", h.loader.Path())
	util.Debug("Log level set to: %s", cfg.Logging.Level)

	return nil
}

// requireProject fails with a hint when no project has been configured
func (h *Handler) requireProject() error {
	if h.cfg.HasProject() {
		return nil
	}
	return fmt.Errorf("%w at %s: run 'cq configure --project <path>' first",
		config.ErrNoActiveConfig, h.loader.Path())
}

// Execute runs the CLI
func (h *Handler) Execute(ctx context.Context) error {
	return fang.Execute(ctx, h.rootCmd,
		fang.WithVersion(config.DefaultConfig().Agent.Version),
		fang.WithNotifySignal(os.Interrupt),
	)
}

// Run is the main entry point
func Run() {
	handler := New()
	err := handler.Execute(context.Background())
	_ = util.DefaultLogger.Close()
	if err != nil {
		os.Exit(1)
	}
}
