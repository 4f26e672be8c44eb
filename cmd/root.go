// Package cmd implements the unreal-companion CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/unreal-companion/unreal-companion/internal/config"
	"github.com/unreal-companion/unreal-companion/internal/infrastructure/sqlite"
	"github.com/unreal-companion/unreal-companion/internal/log"
	"github.com/unreal-companion/unreal-companion/internal/paths"
	"github.com/unreal-companion/unreal-companion/internal/sessions/domain"
	"github.com/unreal-companion/unreal-companion/internal/sessions/engine"
	"github.com/unreal-companion/unreal-companion/internal/sessions/store"
	"github.com/unreal-companion/unreal-companion/internal/telemetry"
	"github.com/unreal-companion/unreal-companion/internal/workflows/resolver"
)

var (
	cfg         config.Config
	cfgPath     string
	projectRoot string
	globalDir   string

	shutdownTelemetry telemetry.Shutdown = telemetry.Disabled()
)

var rootCmd = &cobra.Command{
	Use:   "unreal-companion",
	Short: "Guided design workflows for Unreal projects",
	Long: `unreal-companion resolves workflow and agent definitions across global
and per-project scopes and walks you through guided design sessions,
recording progress in the project's workflow status file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			log.ErrorErr(log.CatConfig, "Telemetry shutdown failed", err)
		}
		return log.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: <global dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&projectRoot, "project", "p", ".", "project root directory")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

func setup() error {
	var err error
	projectRoot, err = filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	globalDir = paths.GlobalDir()
	if cfgPath == "" {
		cfgPath = filepath.Join(globalDir, "config.yaml")
	}

	cfg, err = config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cfg.GlobalDir != "" {
		globalDir = cfg.GlobalDir
	}

	if cfg.Log.File != "" {
		if err := log.Init(cfg.Log.File, cfg.Log.Level); err != nil {
			return fmt.Errorf("initializing log file: %w", err)
		}
	}

	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err = telemetry.Setup(os.Stderr)
		if err != nil {
			return err
		}
	}

	log.Debug(log.CatConfig, "Configuration loaded",
		"config", cfgPath, "global_dir", globalDir, "project", projectRoot,
		"store_backend", cfg.Store.Backend)
	return nil
}

func newResolver() *resolver.Resolver {
	return resolver.New(cfg.ContentCacheTTL)
}

func workflowRoots() []resolver.ScopeRoot {
	return resolver.ScopeRoots(paths.WorkflowScopeRoots(globalDir, projectRoot))
}

func agentRoots() []resolver.ScopeRoot {
	return resolver.ScopeRoots(paths.AgentScopeRoots(globalDir, projectRoot))
}

// openStore returns the configured session store and a close function that
// must run before the process exits.
func openStore() (domain.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendSQLite:
		db, err := sqlite.NewDB(filepath.Join(paths.ResolveProjectDir(projectRoot), "sessions.db"))
		if err != nil {
			return nil, nil, fmt.Errorf("opening session database: %w", err)
		}
		return db.SessionStore(), func() { _ = db.Close() }, nil
	default:
		return store.ForProject(projectRoot), func() {}, nil
	}
}

func newEngine(st domain.Store) *engine.Engine {
	return engine.New(newResolver(), workflowRoots(), st)
}
