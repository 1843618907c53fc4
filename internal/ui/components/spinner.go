package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hackdash/internal/ui/styles"
)

// ActivitySpinner is a spinner whose label names the fetches in flight.
type ActivitySpinner struct {
	spinner   spinner.Model
	idleLabel string
	style     lipgloss.Style
}

// NewActivitySpinner creates a spinner that shows idleLabel when no
// specific fetch is named.
func NewActivitySpinner(idleLabel string) ActivitySpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return ActivitySpinner{
		spinner:   s,
		idleLabel: idleLabel,
		style:     lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

// Init starts the spinner.
func (a ActivitySpinner) Init() tea.Cmd {
	return a.spinner.Tick
}

// Update handles spinner tick messages.
func (a ActivitySpinner) Update(msg tea.Msg) (ActivitySpinner, tea.Cmd) {
	var cmd tea.Cmd
	a.spinner, cmd = a.spinner.Update(msg)
	return a, cmd
}

// View renders the bare spinner frame.
func (a ActivitySpinner) View() string {
	return a.spinner.View()
}

// ActivityLabel describes the running fetches.
func ActivityLabel(stats, feed bool) string {
	switch {
	case stats && feed:
		return "refreshing stats and feed..."
	case stats:
		return "refreshing stats..."
	case feed:
		return "refreshing feed..."
	}
	return ""
}

// Status renders the spinner with a label for the running fetches, or the
// idle label when none is running.
func (a ActivitySpinner) Status(stats, feed bool) string {
	label := ActivityLabel(stats, feed)
	if label == "" {
		label = a.idleLabel
	}
	return a.spinner.View() + " " + a.style.Render(label)
}

// Centered renders the spinner and its idle label in the middle of a
// width x height box.
func (a ActivitySpinner) Centered(width, height int) string {
	return styles.CenterBoth(a.Status(false, false), width, height)
}
