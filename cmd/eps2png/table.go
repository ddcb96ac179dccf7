package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/InVictorLopes/eps-to-png-converter/internal/batch"
)

// renderSummary lays out one row per input with the failing stage folded
// into the status column, and the totals in the footer.
func renderSummary(s *batch.Summary) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Size", "Time", "Status"})

	for _, r := range s.Results {
		size, status := fmt.Sprintf("%dx%d", r.Width, r.Height), "ok"
		if r.Err != nil {
			size, status = "-", r.Err.Error()
			if r.Stage != "" {
				status = r.Stage + ": " + status
			}
		}
		tw.AppendRow(table.Row{filepath.Base(r.Input), size, r.Duration.Round(time.Millisecond), status})
	}

	failed := s.Failed()
	tw.AppendFooter(table.Row{
		fmt.Sprintf("%d files", len(s.Results)), "", s.Elapsed.Round(time.Millisecond),
		fmt.Sprintf("%d failed", failed),
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}
