package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-extractor/internal/synonyms"
)

func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <header text>...",
		Short: "Show which canonical field header texts resolve to",
		Example: `  statement-extractor resolve "Withdrawal Amt." "Closing Bal" "Txn Particulars"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "HEADER\tFIELD\tTIER\tSCORE\tSYNONYM")
			for _, text := range args {
				m, ok := synonyms.Resolve(text)
				if !ok {
					fmt.Fprintf(tw, "%s\tNone\t-\t-\t-\n", text)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", text, m.Field, m.Tier, m.Score, m.Synonym)
			}
			return tw.Flush()
		},
	}
}
