package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/slate/internal/config"
	"github.com/aretw0/slate/internal/platform"
	"github.com/aretw0/slate/pkg/console"
)

var (
	verbose     bool
	configPath  string
	adapterName string
	storagePath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slate",
	Short: "Local administration console for roles and users",
	Long: `slate keeps roles and users as whole snapshots in local storage
and derives a unique code for every new record from its name.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to slate.toml (default: looked up from the working directory)")
	rootCmd.PersistentFlags().StringVar(&adapterName, "adapter", "", "Storage adapter: fs, sqlite or memory")
	rootCmd.PersistentFlags().StringVar(&storagePath, "path", "", "Storage path (directory for fs, database for sqlite)")
}

// loadConfig resolves the config file and applies flag overrides. Without
// --config, slate.toml is looked up from the working directory upwards and
// relative storage paths are taken from the workspace root.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := configPath
	root := ""
	if path == "" {
		r, err := platform.FindRoot(".")
		switch {
		case err == nil:
			root = r
			path = filepath.Join(r, config.FileName)
		case !errors.Is(err, platform.ErrRootNotFound):
			return nil, err
		}
	} else {
		root = filepath.Dir(path)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("adapter") {
		cfg.Adapter = adapterName
	}
	if flags.Changed("path") {
		cfg.Path = storagePath
	} else if root != "" && !filepath.IsAbs(cfg.Path) {
		cfg.Path = filepath.Join(root, cfg.Path)
	}
	return cfg, cfg.Validate()
}

// openService builds the console from the resolved configuration. The
// caller closes it.
func openService(cmd *cobra.Command) (*console.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	opts := append(platform.FromConfig(cfg), platform.WithLogger(slog.Default()))
	svc, err := platform.New(cmd.Context(), cfg.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s storage at %s: %w", cfg.Adapter, cfg.Path, err)
	}
	return svc, nil
}

// withService opens the console, runs fn and closes it.
func withService(cmd *cobra.Command, fn func(svc *console.Service) error) error {
	svc, err := openService(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			slog.Warn("failed to close storage", "error", cerr)
		}
	}()
	return fn(svc)
}
