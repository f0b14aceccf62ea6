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

var batchInputFile string

// batchEntry is the on-disk shape of one element of the JSON array in the
// batch input file.
// It exists only at the CLI boundary; the core pipeline never sees JSON.
type batchEntry struct {
	Name        string `json:"name"`
	HomepageURL string `json:"homepage_url"`
}

func loadBatchInputs(path string) ([]model.CompanyInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "read batch input file")
	}

	var entries []batchEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrap(err, "parse batch input file")
	}

	inputs := make([]model.CompanyInput, len(entries))
	for i, e := range entries {
		inputs[i] = model.CompanyInput{Name: e.Name, HomepageURL: e.HomepageURL}
	}
	return inputs, nil
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run the pipeline for many companies concurrently",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		inputs, err := loadBatchInputs(batchInputFile)
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			zap.L().Info("batch input file contained no companies", zap.String("file", batchInputFile))
			return nil
		}

		env, err := initPipeline()
		if err != nil {
			return err
		}
		defer env.Orchestrator.Shutdown()

		zap.L().Info("batch starting",
			zap.Int("companies", len(inputs)),
			zap.Int("max_concurrent", cfg.Batch.MaxConcurrentCompanies),
		)

		result := env.Orchestrator.Run(ctx, inputs, func(processed int, message, companyName string) {
			zap.L().Info(message,
				zap.String("company", companyName),
				zap.Int("processed", processed),
				zap.Int("total", len(inputs)),
			)
		})

		zap.L().Info("batch complete",
			zap.Int("total", result.Total),
			zap.Int("successful", result.Successful),
			zap.Int("failed", result.Failed),
			zap.Float64("companies_per_minute", result.CompaniesPerMinute),
			zap.Float64("avg_pages_per_company", result.ResourceStats.AvgPagesPerCompany),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInputFile, "input", "", "path to a JSON file containing an array of {name, homepage_url} objects (required)")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
