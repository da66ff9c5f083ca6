package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/logly/logly/detect"
	"github.com/logly/logly/store"
	"github.com/logly/logly/ui"
)

// newWatchCmd wires the optional interactive health/security view.
// Not in spec.md §6's CLI table — carried over from xtop's TUI as an
// additional surface over the same query/analyze layer the scripted
// commands use.
func newWatchCmd() *cobra.Command {
	var hours int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Live-refreshing health and security summary",
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

			model := ui.NewModel(st, detect.DefaultThresholds(), hours)
			if _, err := tea.NewProgram(model).Run(); err != nil {
				return fail(fmt.Errorf("watch: %w", err))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "window size in hours")
	return cmd
}
