// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/j-veylop/hackdash/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Stats   bool
	Feed    bool
}

// State is shared between the root model and the tabs.
type State struct {
	mu sync.RWMutex

	snapshot  *models.Snapshot
	statsErr  error
	feedItems []models.FeedItem
	identity  models.Identity
	userID    string

	Loading     LoadingState
	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates the initial application state.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case "initial":
		s.Loading.Initial = loading
	case "stats":
		s.Loading.Stats = loading
	case "feed":
		s.Loading.Feed = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial || s.Loading.Stats || s.Loading.Feed
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// IsLoading reports whether resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case "initial":
		return s.Loading.Initial
	case "stats":
		return s.Loading.Stats
	case "feed":
		return s.Loading.Feed
	}
	return false
}

// SetSnapshot stores a successful stats run and clears any stats error.
func (s *State) SetSnapshot(snap *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snap
	if snap != nil {
		s.statsErr = nil
		s.LastUpdated = time.Now()
	}
}

// GetSnapshot returns the latest snapshot, possibly nil.
func (s *State) GetSnapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// SetStatsError records a failed stats run. The previous snapshot is kept.
func (s *State) SetStatsError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statsErr = err
}

// GetStatsError returns the last stats failure, or nil after a success.
func (s *State) GetStatsError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statsErr
}

// SetFeedItems replaces the catalog entries.
func (s *State) SetFeedItems(items []models.FeedItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedItems = items
}

// GetFeedItems returns a copy of the catalog entries.
func (s *State) GetFeedItems() []models.FeedItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.FeedItem, len(s.feedItems))
	copy(items, s.feedItems)
	return items
}

// SetIdentity records the effective user ID and the stored identity.
// Changing the user drops the snapshot of the previous one.
func (s *State) SetIdentity(userID string, id models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID != s.userID {
		s.snapshot = nil
		s.statsErr = nil
	}
	s.userID = userID
	s.identity = id
}

// GetUserID returns the effective Slack ID, or "".
func (s *State) GetUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// GetIdentity returns the stored identity.
func (s *State) GetIdentity() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := fmt.Sprintf("%s-%d", time.Now().Format("20060102150405"), s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// TimeSinceUpdate returns the duration since the last successful stats run.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
