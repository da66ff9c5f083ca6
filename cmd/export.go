package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/logly/logly/export"
	"github.com/logly/logly/store"
)

func newExportCmd() *cobra.Command {
	var format string
	var hours, days int
	var source, level string

	cmd := &cobra.Command{
		Use:   "export {system|network|logs} <path>",
		Short: "Write rows to CSV/JSON",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, path := args[0], args[1]

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
			n, err := runExport(st, kind, format, path, since, until, source, level)
			if err != nil {
				return fail(err)
			}
			fmt.Printf("exported %d rows to %s\n", n, path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv|json")
	cmd.Flags().IntVar(&hours, "hours", 0, "window size in hours")
	cmd.Flags().IntVar(&days, "days", 1, "window size in days (ignored if --hours given)")
	cmd.Flags().StringVar(&source, "source", "", "filter log events by source")
	cmd.Flags().StringVar(&level, "level", "", "filter log events by level")
	return cmd
}

func resolveWindow(hours, days int) (since, until int64) {
	until = time.Now().Unix()
	if hours > 0 {
		return until - int64(hours)*3600, until
	}
	if days <= 0 {
		days = 1
	}
	return until - int64(days)*86400, until
}

func runExport(st *store.Store, kind, format, path string, since, until int64, source, level string) (int, error) {
	switch format {
	case "csv":
		e := export.NewCSVExporter(st)
		switch kind {
		case "system":
			return e.SystemMetrics(path, since, until)
		case "network":
			return e.NetworkMetrics(path, since, until)
		case "logs":
			return e.LogEvents(path, since, until, source, level)
		}
	case "json":
		e := export.NewJSONExporter(st)
		switch kind {
		case "system":
			return e.SystemMetrics(path, since, until)
		case "network":
			return e.NetworkMetrics(path, since, until)
		case "logs":
			return e.LogEvents(path, since, until, source, level)
		}
	default:
		return 0, fmt.Errorf("unknown export format %q", format)
	}
	return 0, fmt.Errorf("unknown export kind %q (want system, network, or logs)", kind)
}
