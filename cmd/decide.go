package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/suggest-cli/internal/model"
)

var (
	decideFund   string
	decideID     string
	decideRow    string
	decideColumn string
	decideValue  string
	decideSource string
)

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Record a reviewer decision on a suggestion",
}

func decisionFromFlags() model.Suggestion {
	prov := model.ProvenanceDocument
	if decideSource == string(model.ProvenanceService) {
		prov = model.ProvenanceService
	}
	var value any
	if decideValue != "" {
		if f, err := strconv.ParseFloat(decideValue, 64); err == nil {
			value = f
		} else {
			value = decideValue
		}
	}
	return model.Suggestion{
		ID:             decideID,
		RowID:          decideRow,
		ColumnID:       decideColumn,
		SuggestedValue: value,
		Provenance:     prov,
	}
}

var decideAcceptCmd = &cobra.Command{
	Use:   "accept",
	Short: "Apply a suggestion to the grid and record the acceptance",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Engine.Accept(ctx, decideFund, decisionFromFlags()); err != nil {
			return eris.Wrap(err, "accept")
		}

		zap.L().Info("suggestion accepted",
			zap.String("fund_id", decideFund),
			zap.String("row_id", decideRow),
			zap.String("column_id", decideColumn),
		)
		return nil
	},
}

var decideRejectCmd = &cobra.Command{
	Use:   "reject",
	Short: "Record a rejection without touching the grid",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Engine.Reject(ctx, decideFund, decisionFromFlags()); err != nil {
			return eris.Wrap(err, "reject")
		}

		zap.L().Info("suggestion rejected",
			zap.String("fund_id", decideFund),
			zap.String("row_id", decideRow),
			zap.String("column_id", decideColumn),
		)
		return nil
	},
}

func init() {
	pf := decideCmd.PersistentFlags()
	pf.StringVar(&decideFund, "fund", "", "fund id (required)")
	pf.StringVar(&decideID, "id", "", "suggestion id")
	pf.StringVar(&decideRow, "row", "", "row id (required)")
	pf.StringVar(&decideColumn, "column", "", "column id (required)")
	pf.StringVar(&decideValue, "value", "", "suggested value")
	pf.StringVar(&decideSource, "provenance", "document", "suggestion provenance (document or service)")
	_ = decideCmd.MarkPersistentFlagRequired("fund")
	_ = decideCmd.MarkPersistentFlagRequired("row")
	_ = decideCmd.MarkPersistentFlagRequired("column")
	decideCmd.AddCommand(decideAcceptCmd)
	decideCmd.AddCommand(decideRejectCmd)
	rootCmd.AddCommand(decideCmd)
}
