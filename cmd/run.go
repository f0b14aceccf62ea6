package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/antoinebi/antoine/internal/model"
)

var (
	runName string
	runURL  string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline for a single company",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline()
		if err != nil {
			return err
		}
		defer env.Orchestrator.Shutdown()

		input := model.CompanyInput{Name: runName, HomepageURL: runURL}

		result := env.Orchestrator.Run(ctx, []model.CompanyInput{input}, nil)
		if len(result.CompanyRecords) != 1 {
			return eris.New("run: expected exactly one company record")
		}

		record := result.CompanyRecords[0]
		zap.L().Info("pipeline run complete",
			zap.String("company", record.Input.Name),
			zap.String("status", string(record.ScrapeStatus)),
			zap.Float64("confidence", record.OverallConfidence),
			zap.Float64("cost_usd", record.TotalCostUSD),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	},
}

func init() {
	runCmd.Flags().StringVar(&runName, "name", "", "company name (required)")
	runCmd.Flags().StringVar(&runURL, "url", "", "company homepage URL (required)")
	_ = runCmd.MarkFlagRequired("name")
	_ = runCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(runCmd)
}
