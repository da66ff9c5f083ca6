package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/logly/logly/analyze"
	"github.com/logly/logly/detect"
	"github.com/logly/logly/query"
	"github.com/logly/logly/store"
)

func newQueryCmd() *cobra.Command {
	var hours int
	var threshold int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "query {security|performance|errors|health|ips}",
		Short: "Run an issue/analysis query and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg.DataDir())
			if err != nil {
				return fail(fmt.Errorf("open store: %w", err))
			}
			defer st.Close()

			now := time.Now().Unix()
			since, until := resolveWindow(hours, 0)
			th := detect.DefaultThresholds()

			result, err := runQuery(st, args[0], since, until, now, th, threshold)
			if err != nil {
				return fail(err)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Printf("%+v\n", result)
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "window size in hours")
	cmd.Flags().IntVar(&threshold, "threshold", 61, "minimum threat score for the ips query")
	cmd.Flags().BoolVarP(&jsonOut, "output-json", "o", false, "dump the result as JSON")
	return cmd
}

func runQuery(st *store.Store, kind string, since, until, now int64, th detect.Thresholds, threshold int) (any, error) {
	switch kind {
	case "security":
		return analyze.AnalyzeSecurityPosture(st, since, until, th)
	case "performance":
		return analyze.GetResourceUsageTrends(st, now, int((until-since)/86400+1), "cpu")
	case "errors":
		return analyze.AnalyzeErrorTrends(st, now, int((until-since)/86400+1))
	case "health":
		return analyze.AnalyzeSystemHealth(st, since, until, th)
	case "ips":
		return query.IPs(st).WithThreatAbove(threshold).SortByThreat().All()
	default:
		return nil, fmt.Errorf("unknown query %q (want security, performance, errors, health, or ips)", kind)
	}
}
