package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/antoinebi/antoine/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "antoine",
	Short: "Company business-intelligence extraction pipeline",
	Long:  "Discovers, selects, crawls, and extracts structured business-intelligence fields from a company's website via a tiered Claude-backed pipeline.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if v, _ := cmd.Flags().GetString("selection-model"); v != "" {
			cfg.Anthropic.SelectionModel = v
		}
		if v, _ := cmd.Flags().GetString("extraction-model"); v != "" {
			cfg.Anthropic.ExtractionModel = v
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("selection-model", "", "override the Selection-phase model (e.g. claude-haiku-4-5-20251001)")
	rootCmd.PersistentFlags().String("extraction-model", "", "override the Extraction-phase model (e.g. claude-sonnet-4-5-20250929)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
