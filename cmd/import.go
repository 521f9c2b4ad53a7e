package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/suggest-cli/internal/model"
)

var (
	importFund string
	importPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import extracted documents from a JSON file",
	Long:  "Reads a JSON array of extracted documents (id, row_id, name, sections, context) and stores them for the fund.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		raw, err := os.ReadFile(importPath)
		if err != nil {
			return eris.Wrap(err, "read documents file")
		}

		var docs []model.Document
		if err := json.Unmarshal(raw, &docs); err != nil {
			return eris.Wrap(err, "parse documents file")
		}

		n, err := st.ImportDocuments(ctx, importFund, docs)
		if err != nil {
			return eris.Wrap(err, "import documents")
		}

		zap.L().Info("import complete",
			zap.Int("imported", n),
			zap.String("fund_id", importFund),
			zap.String("file", importPath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFund, "fund", "", "fund id (required)")
	importCmd.Flags().StringVar(&importPath, "file", "", "path to JSON documents file (required)")
	_ = importCmd.MarkFlagRequired("fund")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
