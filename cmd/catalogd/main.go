package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/aibiz/agent-catalog/internal/catalog"
	"github.com/aibiz/agent-catalog/internal/logging"
	"github.com/aibiz/agent-catalog/internal/server"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "catalogd",
	Short:   "Agent catalog service",
	Long:    `catalogd registers sponsors and the agent profiles they operate, tags agents with normalized skills, and enforces tier-based agent quotas.`,
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Run(cmd.Context(), Version)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("catalogd %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Idempotently seed the skill vocabulary and sample data",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := server.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logging.Init(logging.Config{
			Format:    cfg.LogFormat,
			Level:     cfg.LogLevel,
			Component: "catalog-seed",
		})

		store, err := catalog.Open(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("open catalog store: %w", err)
		}
		defer store.Close()

		if err := store.Seed(cmd.Context()); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		log.Info().Str("data_dir", cfg.DataDir).Msg("Seed complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
