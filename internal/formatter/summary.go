package formatter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/desertthunder/crate/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var summaryHeader = table.Row{"Destination", "Processed", "Added", "Not Found", "Skipped"}

func countersRow(label string, c models.Counters) table.Row {
	return table.Row{
		label,
		strconv.Itoa(c.Processed),
		strconv.Itoa(c.Added),
		strconv.Itoa(c.NotFound),
		strconv.Itoa(c.SkippedDuplicates),
	}
}

// RenderSummary renders the per-destination counters as a table with a totals footer.
//
// Destinations that saw no releases are omitted.
func RenderSummary(stats *models.RunStats) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(summaryHeader)

	for _, d := range models.Destinations() {
		c := stats.For(d)
		if c == (models.Counters{}) {
			continue
		}
		tw.AppendRow(countersRow(d.String(), c))
	}
	tw.AppendFooter(countersRow("Total", stats.Total()))

	configs := make([]table.ColumnConfig, 0, len(summaryHeader))
	for i := range summaryHeader {
		align := text.AlignRight
		if i == 0 {
			align = text.AlignLeft
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// WriteSummary writes [RenderSummary] followed by a newline to w.
func WriteSummary(w io.Writer, stats *models.RunStats) error {
	if _, err := fmt.Fprintln(w, RenderSummary(stats)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
