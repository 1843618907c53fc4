package app

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/hackdash/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// refreshTimeout bounds a user-requested run. Each range query has its
	// own shorter timeout.
	refreshTimeout = 2 * time.Minute
)

// writeClipboard is swapped in tests; CI machines have no clipboard.
var writeClipboard = clipboard.WriteAll

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadCacheCmd reads what the manager restored from SQLite and the identity file.
func loadCacheCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		return CacheLoadedMsg{
			Snapshot: mgr.CachedSnapshot(),
			Identity: mgr.Identity(),
			UserID:   mgr.UserID(),
			Feed:     mgr.FeedItems(),
		}
	}
}

// refreshStatsCmd runs a full aggregation for the current user.
func refreshStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		snap, err := mgr.RefreshStats(ctx)
		return StatsRefreshedMsg{Snapshot: snap, Error: err}
	}
}

// refreshFeedCmd fetches the catalog feed.
func refreshFeedCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		items, err := mgr.RefreshFeed(ctx)
		return FeedRefreshedMsg{Items: items, Error: err}
	}
}

// setSlackIDCmd persists a Slack ID. The identity watcher then emits the change.
func setSlackIDCmd(mgr *services.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		err := mgr.SetSlackID(id)
		return SetSlackIDResultMsg{SlackID: id, Error: err}
	}
}

// clearIdentityCmd removes the stored identity.
func clearIdentityCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		if err := mgr.ClearIdentity(); err != nil {
			return ErrorMsg{Error: err, Context: "identity"}
		}
		return nil
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// startServicesCmd starts the poll loops. It runs after the subscription so
// the first refresh is not broadcast to nobody.
func startServicesCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Start()
		return nil
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// copyToClipboardCmd writes text to the system clipboard.
func copyToClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardResultMsg{Error: writeClipboard(text)}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// Commands bundles the manager-backed commands behind nil checks so the
// model works without services in tests.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// RefreshStats returns a command that starts a stats run, or nil without a manager.
func (c *Commands) RefreshStats() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return tea.Batch(
		func() tea.Msg { return StartLoadingMsg{Resource: "stats"} },
		refreshStatsCmd(c.manager),
	)
}

// RefreshFeed returns a command that fetches the feed, or nil without a manager.
func (c *Commands) RefreshFeed() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return tea.Batch(
		func() tea.Msg { return StartLoadingMsg{Resource: "feed"} },
		refreshFeedCmd(c.manager),
	)
}

// CopyToClipboard returns a command that copies text.
func (c *Commands) CopyToClipboard(text string) tea.Cmd {
	return copyToClipboardCmd(text)
}
