package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/suggest-cli/internal/model"
	"github.com/sells-group/suggest-cli/internal/reason"
)

var (
	exportFund string
	exportPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Run a reconciliation pass and export the suggestions to XLSX",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Engine.Reconcile(ctx, exportFund)
		if err != nil {
			return eris.Wrap(err, "reconcile")
		}

		f := xlsx.NewFile()
		sheet, err := f.AddSheet("Suggestions")
		if err != nil {
			return eris.Wrap(err, "export: add sheet")
		}

		header := sheet.AddRow()
		for _, h := range []string{"Row", "Column", "Current", "Suggested", "Change", "Confidence", "Score", "Provenance", "Reasoning"} {
			header.AddCell().SetString(h)
		}

		for _, s := range result.Suggestions {
			m := env.Metrics.ByKey(s.ColumnID)
			row := sheet.AddRow()
			row.AddCell().SetString(s.RowID)
			row.AddCell().SetString(s.ColumnID)
			row.AddCell().SetString(formatCell(m, s.CurrentValue))
			row.AddCell().SetString(formatCell(m, s.SuggestedValue))
			row.AddCell().SetString(string(s.ChangeType))
			row.AddCell().SetFloatWithFormat(s.Confidence, "0.00")
			row.AddCell().SetFloatWithFormat(s.Score, "0.00")
			row.AddCell().SetString(string(s.Provenance))
			row.AddCell().SetString(s.Reasoning)
		}

		if len(result.Insights) > 0 {
			insightSheet, err := f.AddSheet("Insights")
			if err != nil {
				return eris.Wrap(err, "export: add insights sheet")
			}
			ih := insightSheet.AddRow()
			for _, h := range []string{"Document", "Kind", "Text"} {
				ih.AddCell().SetString(h)
			}
			for _, in := range result.Insights {
				row := insightSheet.AddRow()
				row.AddCell().SetString(in.DocumentID)
				row.AddCell().SetString(in.Kind)
				row.AddCell().SetString(in.Text)
			}
		}

		if err := f.Save(exportPath); err != nil {
			return eris.Wrap(err, "export: save file")
		}

		zap.L().Info("export complete",
			zap.String("fund_id", exportFund),
			zap.String("file", exportPath),
			zap.Int("suggestions", len(result.Suggestions)),
		)
		return nil
	},
}

func formatCell(m *model.Metric, v any) string {
	if model.IsEmptyValue(v) {
		return ""
	}
	if m != nil {
		return reason.FormatValue(m, v)
	}
	return fmt.Sprintf("%v", v)
}

func init() {
	exportCmd.Flags().StringVar(&exportFund, "fund", "", "fund id (required)")
	exportCmd.Flags().StringVar(&exportPath, "out", "suggestions.xlsx", "output file path")
	_ = exportCmd.MarkFlagRequired("fund")
	rootCmd.AddCommand(exportCmd)
}
