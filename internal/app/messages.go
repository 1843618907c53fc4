package app

import (
	"time"

	"github.com/j-veylop/hackdash/internal/models"
	"github.com/j-veylop/hackdash/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// CacheLoadedMsg carries whatever the manager restored from disk at startup.
type CacheLoadedMsg struct {
	Snapshot *models.Snapshot
	Identity models.Identity
	UserID   string
	Feed     []models.FeedItem
}

// StatsRefreshedMsg is the result of a user-requested stats run.
type StatsRefreshedMsg struct {
	Snapshot *models.Snapshot
	Error    error
}

// FeedRefreshedMsg is the result of a user-requested feed fetch.
type FeedRefreshedMsg struct {
	Items []models.FeedItem
	Error error
}

// StatsUpdatedMsg is forwarded to tabs after a successful stats run.
type StatsUpdatedMsg struct {
	Snapshot *models.Snapshot
}

// FeedUpdatedMsg is forwarded to tabs after a feed fetch.
type FeedUpdatedMsg struct {
	Items []models.FeedItem
}

// IdentityChangedMsg is forwarded to tabs when the effective user changes.
type IdentityChangedMsg struct {
	Identity models.Identity
	UserID   string
}

// SetSlackIDMsg asks the root model to persist a manually entered Slack ID.
type SetSlackIDMsg struct {
	SlackID string
}

// SetSlackIDResultMsg reports the outcome of SetSlackIDMsg.
type SetSlackIDResultMsg struct {
	SlackID string
	Error   error
}

// ClearIdentityMsg asks the root model to forget the stored Slack ID.
type ClearIdentityMsg struct{}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "stats", "feed"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// CopyToClipboardMsg requests copying text to clipboard.
type CopyToClipboardMsg struct {
	Text string
}

// ClipboardResultMsg contains the result of a clipboard operation.
type ClipboardResultMsg struct {
	Error error
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
