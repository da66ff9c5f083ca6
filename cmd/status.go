package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/logly/logly/store"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print DB counts and file size",
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

			stats, err := st.GetStats()
			if err != nil {
				return fail(fmt.Errorf("read stats: %w", err))
			}

			fmt.Printf("database:          %s\n", st.Path())
			fmt.Printf("system metrics:    %s\n", humanize.Comma(stats.SystemMetrics))
			fmt.Printf("network metrics:   %s\n", humanize.Comma(stats.NetworkMetrics))
			fmt.Printf("log events:        %s\n", humanize.Comma(stats.LogEvents))
			fmt.Printf("event traces:      %s\n", humanize.Comma(stats.EventTraces))
			fmt.Printf("ip reputations:    %s\n", humanize.Comma(stats.IPReputations))
			fmt.Printf("hourly aggregates: %s\n", humanize.Comma(stats.HourlyRows))
			fmt.Printf("daily aggregates:  %s\n", humanize.Comma(stats.DailyRows))
			fmt.Printf("size:              %s\n", humanize.Bytes(uint64(stats.SizeBytes)))
			return nil
		},
	}
}

func newDBSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "db-size",
		Short: "Print DB file size in B/KB/MB/GB",
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

			size, err := st.Size()
			if err != nil {
				return fail(fmt.Errorf("stat database: %w", err))
			}
			fmt.Println(humanize.Bytes(uint64(size)))
			return nil
		},
	}
}
