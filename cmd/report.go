package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/logly/logly/export"
	"github.com/logly/logly/store"
)

func newReportCmd() *cobra.Command {
	var hours, days int
	var print bool

	cmd := &cobra.Command{
		Use:   "report <path>",
		Short: "Write summary report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.DataDir())
			if err != nil {
				return fail(fmt.Errorf("open store: %w", err))
			}
			defer st.Close()

			since, until := resolveWindow(hours, days)
			gen := export.NewReportGenerator(st)
			if err := gen.Summary(path, since, until); err != nil {
				return fail(err)
			}

			if print {
				data, err := os.ReadFile(path)
				if err != nil {
					return fail(err)
				}
				fmt.Print(string(data))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 0, "window size in hours")
	cmd.Flags().IntVar(&days, "days", 1, "window size in days (ignored if --hours given)")
	cmd.Flags().BoolVarP(&print, "print", "p", false, "also print the report to stdout")
	return cmd
}
