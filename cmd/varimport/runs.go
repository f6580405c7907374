package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gwastore/varimport/internal/rundb"
)

func newRunsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List completed import runs from the local ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := rundb.Open(viper.GetString("ledger.path"))
			if err != nil {
				return fmt.Errorf("open run ledger: %w", err)
			}
			defer ledger.Close()

			runs, err := ledger.ListRuns(limit)
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Println("No import runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "IMPORTED\tFILE\tVERSION\tVARIANTS\tGENOTYPES\tCONTIGS\tOBJECT")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%.1f\t%d\t%d\t%d\t%s\n",
					r.ImportedAt.Format("2006-01-02 15:04:05"),
					r.VCFPath, r.VCFVersion,
					r.NumVariants, r.NumGenotypes, r.NumContigs,
					r.ObjectRef)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show (0 for all)")

	return cmd
}
