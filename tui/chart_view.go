package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/ltvdash/metrics"
)

const chartBarWidth = 28

var (
	chartBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))

	chartLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(7).
			Align(lipgloss.Right)
)

// renderChart draws the normalized value distribution of the latest
// successful run as horizontal bars, one per decile bucket.
func (m Model) renderChart() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Value Distribution"))
	s.WriteString("\n\n")

	chart := m.ctrl.Chart()
	if chart.Empty {
		s.WriteString(mutedStyle.Render("No successful sync yet."))
		return panelStyle.Render(s.String())
	}

	s.WriteString(renderBars(chart.Buckets, chartBarWidth))

	stats := chart.Stats
	s.WriteString("\n")
	s.WriteString(mutedStyle.Render(fmt.Sprintf("run #%d  n=%d  min %s  median %s  mean %s  max %s",
		chart.RunID, stats.Count,
		metrics.FormatMoney(stats.MinLTV), metrics.FormatMoney(stats.MedianLTV),
		metrics.FormatMoney(stats.MeanLTV), metrics.FormatMoney(stats.MaxLTV))))
	return panelStyle.Render(s.String())
}

func renderBars(buckets []metrics.Bucket, width int) string {
	peak := 0
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}

	var s strings.Builder
	for _, b := range buckets {
		n := 0
		if peak > 0 && b.Count > 0 {
			n = min(max(b.Count*width/peak, 1), width)
		}
		bar := chartBarStyle.Render(strings.Repeat("█", n))
		fmt.Fprintf(&s, "%s %s%s %d\n", chartLabelStyle.Render(b.Label), bar, strings.Repeat(" ", width-n), b.Count)
	}
	return s.String()
}
