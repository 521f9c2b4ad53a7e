package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/suggest-cli/internal/model"
)

var candidatesFund string

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Manage the external service candidate queue",
}

var candidatesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Queue a service candidate from a JSON file or stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		in := os.Stdin
		if len(args) > 0 {
			f, err := os.Open(args[0])
			if err != nil {
				return eris.Wrap(err, "open candidate file")
			}
			defer f.Close()
			in = f
		}

		var c model.ServiceCandidate
		if err := json.NewDecoder(in).Decode(&c); err != nil {
			return eris.Wrap(err, "parse candidate")
		}
		if c.RowID == "" || c.ColumnID == "" {
			return eris.New("candidate row_id and column_id are required")
		}

		if err := st.UpsertServiceCandidate(ctx, candidatesFund, c); err != nil {
			return eris.Wrap(err, "queue candidate")
		}

		zap.L().Info("candidate queued",
			zap.String("fund_id", candidatesFund),
			zap.String("row_id", c.RowID),
			zap.String("column_id", c.ColumnID),
			zap.String("source", c.SourceService),
		)
		return nil
	},
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued service candidates for a fund",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		out, err := st.ListServiceCandidates(ctx, candidatesFund)
		if err != nil {
			return eris.Wrap(err, "list candidates")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	candidatesCmd.PersistentFlags().StringVar(&candidatesFund, "fund", "", "fund id (required)")
	_ = candidatesCmd.MarkPersistentFlagRequired("fund")
	candidatesCmd.AddCommand(candidatesAddCmd)
	candidatesCmd.AddCommand(candidatesListCmd)
	rootCmd.AddCommand(candidatesCmd)
}
