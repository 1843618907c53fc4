package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hackdash/internal/logger"
	"github.com/j-veylop/hackdash/internal/ui/styles"
)

// AnimationTickMsg advances the goal bar fill animation.
type AnimationTickMsg time.Time

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}

const (
	goalFrom = "#FF8C37"
	goalTo   = "#33D6A6"
)

// GoalBar shows today's hours against the daily goal. The fill eases
// toward its target over a few frames.
type GoalBar struct {
	progress progress.Model
	target   float64
	current  float64
	animate  bool
}

// NewGoalBar creates a goal bar with an orange to green gradient.
func NewGoalBar() GoalBar {
	return GoalBar{
		progress: progress.New(
			progress.WithScaledGradient(goalFrom, goalTo),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// SetPercent sets the target fill, 0-100. Values above 100 are clamped.
func (g *GoalBar) SetPercent(percent float64) tea.Cmd {
	g.target = min(max(percent, 0), 100)
	if g.current == g.target {
		return nil
	}
	if g.animate {
		return nil
	}
	g.animate = true
	return animationTick()
}

// Percent returns the fill currently drawn.
func (g GoalBar) Percent() float64 {
	return g.current
}

// Animating reports whether the fill is still moving.
func (g GoalBar) Animating() bool {
	return g.animate
}

// Update steps the animation.
func (g GoalBar) Update(msg tea.Msg) (GoalBar, tea.Cmd) {
	if _, ok := msg.(AnimationTickMsg); !ok || !g.animate {
		return g, nil
	}

	diff := g.target - g.current
	step := max(abs(diff)/6, 0.5)
	switch {
	case abs(diff) <= step:
		g.current = g.target
		g.animate = false
		return g, nil
	case diff > 0:
		g.current += step
	default:
		g.current -= step
	}
	return g, animationTick()
}

// View renders the bar, the hours and the percentage of goal.
func (g GoalBar) View(hours, goal float64, width int) string {
	g.progress.Width = max(width-22, 10)
	bar := g.progress.ViewAs(g.current / 100)

	percent := 0.0
	if goal > 0 {
		percent = hours / goal * 100
	}
	label := styles.GetGoalStyle(percent).
		Width(20).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1fh / %.1fh", hours, goal))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", label)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// RenderLoadingBar renders a shimmer that sweeps back and forth while the
// first stats run is in flight.
func RenderLoadingBar(width, frame int) string {
	barWidth := max(width, 10)
	const cycle = 100

	t := float64(frame%cycle) / float64(cycle)
	p := t * 2
	if t >= 0.5 {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	pos := int(eased * float64(barWidth))

	// The head shifts from the goal bar's start color to its end color as it sweeps.
	near := lipgloss.NewStyle().Foreground(lipgloss.Color(interpolateColor(goalFrom, goalTo, eased)))
	mid := lipgloss.NewStyle().Foreground(styles.TextSecondary)
	far := lipgloss.NewStyle().Foreground(styles.BgAccent)

	var b strings.Builder
	for i := range barWidth {
		dist := pos - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(near.Render("▓"))
		case dist < 5:
			b.WriteString(mid.Render("▒"))
		default:
			b.WriteString(far.Render("░"))
		}
	}
	return b.String()
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
