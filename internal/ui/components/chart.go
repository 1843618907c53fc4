// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/hackdash/internal/ui/styles"
)

// Chart colors.
var (
	ChartCurrentColor  = styles.Primary
	ChartPreviousColor = styles.Cyan
	ChartBarColor      = styles.Orange
)

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	// Failed marks a bucket whose query failed. It renders as a gap with a
	// marker instead of a zero-length bar.
	Failed bool
}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width = max(width, 20)
	height = max(height, 3)

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.Precision(1),
	)
}

// RenderDualLineChart overlays two series, current on top of previous.
// The shorter series is padded with zeros.
func RenderDualLineChart(current, previous []float64, width, height int, caption string) string {
	if len(current) == 0 && len(previous) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width = max(width, 20)
	height = max(height, 3)

	n := max(len(current), len(previous))
	cur := make([]float64, n)
	prev := make([]float64, n)
	copy(cur, current)
	copy(prev, previous)

	return asciigraph.PlotMany([][]float64{prev, cur},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(
			asciigraph.Cyan,
			asciigraph.Red,
		),
	)
}

// RenderBarChart creates a horizontal bar chart scaled to the largest value.
func RenderBarChart(bars []Bar, width int, color lipgloss.Color) string {
	if len(bars) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	maxVal := 0.0
	maxLabelLen := 0
	for _, b := range bars {
		maxVal = max(maxVal, b.Value)
		maxLabelLen = max(maxLabelLen, lipgloss.Width(b.Label))
	}
	if maxVal == 0 {
		maxVal = 1
	}

	barWidth := max(width-maxLabelLen-10, 10)
	barStyle := lipgloss.NewStyle().Foreground(color)
	failStyle := styles.WarningTextStyle

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		label := fmt.Sprintf("%*s", maxLabelLen, b.Label)

		if b.Failed {
			lines = append(lines, label+" │"+failStyle.Render(" ! unavailable"))
			continue
		}

		barLen := max(int((b.Value/maxVal)*float64(barWidth)), 0)
		if b.Value > 0 && barLen == 0 {
			barLen = 1
		}
		bar := barStyle.Render(strings.Repeat("█", barLen))
		lines = append(lines, fmt.Sprintf("%s │%s %.1fh", label, bar, b.Value))
	}

	return strings.Join(lines, "\n")
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

func sparkIndex(v, maxVal float64) int {
	if maxVal <= 0 {
		return 0
	}
	i := int((v / maxVal) * float64(len(sparkChars)-1))
	return min(max(i, 0), len(sparkChars)-1)
}

// RenderWeeklyPattern renders one spark character per weekday, Monday first.
// averages is indexed Sunday=0 like time.Weekday.
func RenderWeeklyPattern(averages [7]float64) string {
	dayNames := [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

	maxVal := 0.0
	for _, v := range averages {
		maxVal = max(maxVal, v)
	}

	parts := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		wd := i % 7
		spark := lipgloss.NewStyle().Foreground(ChartBarColor).
			Render(string(sparkChars[sparkIndex(averages[wd], maxVal)]))
		parts = append(parts, fmt.Sprintf("%s %s", dayNames[wd], spark))
	}

	return strings.Join(parts, "  ")
}

// RenderSparkline creates a compact inline sparkline, sampling values down
// to width characters.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}

	step := max(float64(len(values))/float64(width), 1)

	var result strings.Builder
	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		result.WriteRune(sparkChars[sparkIndex(values[int(float64(i)*step)], maxVal)])
	}

	return result.String()
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}
