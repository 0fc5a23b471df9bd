package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"disease-detector/internal/common/logger"
	"disease-detector/internal/config"
)

var predictCmd = &cobra.Command{
	Use:   `predict "<symptoms>"`,
	Short: "Predict diseases for one symptom description and print JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPredict(cmd, strings.Join(args, " "))
	},
}

func init() {
	predictCmd.Flags().String("patient", "", "Patient ID whose history boosts and records the prediction")
	predictCmd.Flags().String("log-level", "warn", "Log level for stderr output")
}

func runPredict(cmd *cobra.Command, symptoms string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, _ := cmd.Flags().GetString("log-level")
	log, err := logger.NewStderrLogger(level)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := context.Background()
	a, err := buildApp(ctx, cfg, resolveCatalogPath(cmd, cfg.CatalogPath), false, log)
	if err != nil {
		return err
	}
	defer a.Close()

	patientID, _ := cmd.Flags().GetString("patient")
	pred, err := a.predictions.Predict(ctx, symptoms, patientID)
	if err != nil {
		return err
	}

	out := map[string]any{
		"predictions":    pred.Results,
		"input_symptoms": symptoms,
		"models_used":    pred.ModelsUsed,
	}
	if len(pred.ModelsUnavailable) > 0 {
		out["models_unavailable"] = pred.ModelsUnavailable
	}
	if len(pred.HistoryApplied) > 0 {
		out["history_applied"] = pred.HistoryApplied
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
