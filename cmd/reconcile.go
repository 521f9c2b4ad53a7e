package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reconcileFund string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Run one reconciliation pass and print the ranked suggestions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Engine.Reconcile(ctx, reconcileFund)
		if err != nil {
			return eris.Wrap(err, "reconcile")
		}

		zap.L().Info("reconciliation complete",
			zap.String("fund_id", reconcileFund),
			zap.Int("suggestions", len(result.Suggestions)),
			zap.Int("insights", len(result.Insights)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	reconcileCmd.Flags().StringVar(&reconcileFund, "fund", "", "fund id (required)")
	_ = reconcileCmd.MarkFlagRequired("fund")
	rootCmd.AddCommand(reconcileCmd)
}
