// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/hackdash/internal/config"
	"github.com/j-veylop/hackdash/internal/db"
	"github.com/j-veylop/hackdash/internal/logger"
	"github.com/j-veylop/hackdash/internal/models"
	"github.com/j-veylop/hackdash/internal/services/feed"
	"github.com/j-veylop/hackdash/internal/services/hackatime"
	"github.com/j-veylop/hackdash/internal/services/identity"
	"github.com/j-veylop/hackdash/internal/usage"
)

type (
	// StatsRefreshingEvent is emitted when a stats run starts.
	StatsRefreshingEvent struct{}

	// StatsUpdatedEvent is emitted after a successful stats run.
	StatsUpdatedEvent struct {
		Snapshot *models.Snapshot
	}

	// FeedUpdatedEvent is emitted after the catalog feed was fetched.
	FeedUpdatedEvent struct {
		Items []models.FeedItem
	}

	// IdentityChangedEvent is emitted when the effective user ID changes.
	IdentityChangedEvent struct {
		Identity models.Identity
		UserID   string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ErrIdentityChanged is returned by RefreshStats when the Slack ID changed
// while the run was in flight. The result is discarded.
var ErrIdentityChanged = errors.New("identity changed during refresh")

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (StatsRefreshingEvent) isServiceEvent() {}
func (StatsUpdatedEvent) isServiceEvent()    {}
func (FeedUpdatedEvent) isServiceEvent()     {}
func (IdentityChangedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()           {}

// FeedFetcher loads the catalog feed.
type FeedFetcher interface {
	Fetch(ctx context.Context) ([]models.FeedItem, error)
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	refreshMu   sync.Mutex
	cfg         *config.Config
	database    *db.DB
	identity    *identity.Service
	client      *hackatime.Client
	stats       usage.StatsSource
	aggregator  *usage.Aggregator
	feed        FeedFetcher
	snapshot    *models.Snapshot
	feedItems   []models.FeedItem
	subscribers []chan<- ServiceEvent
	lastUserID  string
	notes       notificationState
	now         func() time.Time
	notify      func(title, body string) error
	ctx         context.Context
	cancel      context.CancelFunc
	startOnce   sync.Once
	closeOnce   sync.Once
	wg          sync.WaitGroup
}

// notificationState remembers the previous run for desktop notifications.
type notificationState struct {
	day     string
	streak  int
	today   float64
	hasPrev bool
}

// NewManager creates a new service manager. Background polling starts with
// Start.
func NewManager(cfg *config.Config) (*Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:    cfg,
		now:    time.Now,
		notify: desktopNotify,
		ctx:    ctx,
		cancel: cancel,
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.identity, err = identity.New(identity.Config{
		FilePath:        cfg.IdentityPath,
		SlackIDOverride: cfg.SlackID,
		OAuth: identity.OAuthConfig{
			AuthURL:      cfg.HackClubAuthURL,
			ClientID:     cfg.HackClubClientID,
			ClientSecret: cfg.HackClubClientSecret,
		},
	})
	if err != nil {
		cancel()
		_ = m.database.Close()
		return nil, fmt.Errorf("failed to initialize identity: %w", err)
	}
	m.lastUserID = m.identity.UserID()

	m.client = hackatime.New(hackatime.Config{
		BaseURL: cfg.HackatimeBaseURL,
		APIKey:  cfg.HackatimeAPIKey,
	})
	m.stats = m.client
	m.aggregator = usage.New(m.client, usage.Config{
		QueryTimeout:  cfg.QueryTimeout,
		MaxConcurrent: cfg.MaxConcurrentQueries,
		Parallel:      cfg.ParallelQueries,
	})
	m.feed = feed.New(feed.Config{URL: cfg.FeedURL})

	m.loadCache()

	m.wg.Add(1)
	go m.routeEvents()

	return m, nil
}

// loadCache hydrates the snapshot and feed from the database.
func (m *Manager) loadCache() {
	snap, err := m.database.LoadSnapshot(db.CachedStatsKey)
	if err != nil {
		logger.Warn("failed to load cached stats", "error", err)
	}
	items, err := m.database.GetFeedItems()
	if err != nil {
		logger.Warn("failed to load cached feed", "error", err)
	}

	if snap != nil && !snap.BelongsTo(m.identity.UserID()) {
		logger.Info("dropping cached stats of another user", "cached_user", snap.UserID)
		snap = nil
		m.dropUserData()
	}

	m.mu.Lock()
	m.snapshot = snap
	m.feedItems = items
	m.mu.Unlock()
}

// dropUserData deletes the cached snapshot and the daily history, neither
// of which is valid for another user.
func (m *Manager) dropUserData() {
	if err := m.database.DeleteSnapshot(db.CachedStatsKey); err != nil {
		logger.Warn("failed to drop cached stats", "error", err)
	}
	if err := m.database.ClearDailyHistory(); err != nil {
		logger.Warn("failed to drop daily history", "error", err)
	}
}

func desktopNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Start launches the stats and feed poll loops.
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		m.wg.Add(2)
		go m.pollStats()
		go m.pollFeed()
	})
}

// routeEvents forwards identity events to subscribers.
func (m *Manager) routeEvents() {
	defer m.wg.Done()
	for {
		select {
		case event := <-m.identity.Events():
			m.handleIdentityEvent(event)
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) handleIdentityEvent(event identity.Event) {
	switch event.Type {
	case identity.EventError:
		m.broadcast(ErrorEvent{Service: "identity", Error: event.Error})
		return
	case identity.EventLoaded:
		return
	}

	userID := m.identity.UserID()
	// The cache is dropped under mu so an in-flight run for the previous
	// user either persists before this or sees the new user and discards.
	m.mu.Lock()
	changed := userID != m.lastUserID
	m.lastUserID = userID
	if changed {
		m.snapshot = nil
		m.notes = notificationState{}
		m.dropUserData()
	}
	m.mu.Unlock()

	if !changed {
		return
	}

	m.broadcast(IdentityChangedEvent{Identity: m.identity.Identity(), UserID: userID})

	if userID != "" {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			_, _ = m.RefreshStats(m.ctx)
		}()
	}
}

// pollStats resolves the identity if needed, refreshes once, then on
// every tick.
func (m *Manager) pollStats() {
	defer m.wg.Done()

	if m.identity.UserID() == "" && m.cfg.OAuthConfigured() {
		if _, err := m.identity.Resolve(m.ctx); err != nil && !errors.Is(err, identity.ErrNoCredentials) {
			logger.Warn("failed to resolve identity", "error", err)
			m.broadcast(ErrorEvent{Service: "identity", Error: err})
		}
	}

	_, _ = m.RefreshStats(m.ctx)

	ticker := time.NewTicker(m.cfg.StatsRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = m.RefreshStats(m.ctx)
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) pollFeed() {
	defer m.wg.Done()

	_, _ = m.RefreshFeed(m.ctx)

	ticker := time.NewTicker(m.cfg.FeedRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = m.RefreshFeed(m.ctx)
		case <-m.ctx.Done():
			return
		}
	}
}

// RefreshStats runs a full aggregation for the current identity. On success
// the cached snapshot is replaced and the daily history updated; on failure
// the cache is left alone. Runs are serialized.
func (m *Manager) RefreshStats(ctx context.Context) (*models.Snapshot, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	userID := m.identity.UserID()
	if userID == "" {
		return nil, usage.ErrIdentityRequired
	}

	m.broadcast(StatsRefreshingEvent{})

	now := m.now()
	snap, err := m.aggregator.Aggregate(ctx, m.stats, userID, now)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("stats refresh failed", "user", userID, "error", err)
			m.broadcast(ErrorEvent{Service: "stats", Error: err})
		}
		return nil, err
	}

	if !m.persist(snap, now) {
		logger.Info("discarding stats of a previous identity", "user", userID)
		return nil, ErrIdentityChanged
	}

	m.checkNotifications(snap, now)
	m.broadcast(StatsUpdatedEvent{Snapshot: snap})
	return snap, nil
}

// persist stores a finished run unless the identity moved on while it was
// in flight.
func (m *Manager) persist(snap *models.Snapshot, now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap.UserID != m.lastUserID || snap.UserID != m.identity.UserID() {
		return false
	}

	if err := m.database.SaveSnapshot(db.CachedStatsKey, snap); err != nil {
		logger.Warn("failed to cache stats", "error", err)
	}
	if n, err := m.database.UpsertDailyHistory(snap.Daily); err != nil {
		logger.Warn("failed to update daily history", "error", err)
	} else {
		logger.Debug("daily history updated", "days", n)
	}
	if m.cfg.HistoryKeepDays > 0 {
		if _, err := m.database.PruneDailyHistory(m.cfg.HistoryKeepDays, now); err != nil {
			logger.Warn("failed to prune daily history", "error", err)
		}
	}

	m.snapshot = snap
	return true
}

// checkNotifications fires a desktop notification when the streak grows or
// the daily goal is first reached. The first run after start or an identity
// change only records a baseline.
func (m *Manager) checkNotifications(snap *models.Snapshot, now time.Time) {
	streak := usage.Streak(snap.Daily)
	today := usage.TodayHours(snap.Today)
	day := now.Format(models.DailyDateLayout)
	goal := m.cfg.DailyGoalHours

	m.mu.Lock()
	prev := m.notes
	m.notes = notificationState{day: day, streak: streak, today: today, hasPrev: true}
	m.mu.Unlock()

	if !prev.hasPrev {
		return
	}
	if prev.day != day {
		prev.today = 0
	}

	if streak > prev.streak {
		title := fmt.Sprintf("Streak: %d days", streak)
		if err := m.notify(title, "Keep shipping!"); err != nil {
			logger.Debug("notification failed", "error", err)
		}
	}
	if goal > 0 && today >= goal && prev.today < goal {
		body := fmt.Sprintf("%.1f hours coded today (goal %.1f)", today, goal)
		if err := m.notify("Daily goal reached", body); err != nil {
			logger.Debug("notification failed", "error", err)
		}
	}
}

// RefreshFeed fetches the catalog and replaces the cached copy.
func (m *Manager) RefreshFeed(ctx context.Context) ([]models.FeedItem, error) {
	items, err := m.feed.Fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("feed refresh failed", "error", err)
			m.broadcast(ErrorEvent{Service: "feed", Error: err})
		}
		return nil, err
	}

	if err := m.database.ReplaceFeedItems(items); err != nil {
		logger.Warn("failed to cache feed", "error", err)
	}

	m.mu.Lock()
	m.feedItems = items
	m.mu.Unlock()

	m.broadcast(FeedUpdatedEvent{Items: items})
	return items, nil
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel. A closed
// channel yields a nil message.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// CachedSnapshot returns the latest snapshot, or nil before the first run.
func (m *Manager) CachedSnapshot() *models.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// FeedItems returns the latest catalog items.
func (m *Manager) FeedItems() []models.FeedItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.FeedItem(nil), m.feedItems...)
}

// DailyHistory returns the persisted daily totals for r.
func (m *Manager) DailyHistory(r models.HistoryRange) (*models.DailyHistory, error) {
	if m.database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return m.database.GetDailyHistoryRange(r, m.now())
}

// UserID returns the effective Slack ID.
func (m *Manager) UserID() string {
	return m.identity.UserID()
}

// Identity returns the stored identity.
func (m *Manager) Identity() models.Identity {
	return m.identity.Identity()
}

// SetSlackID stores a manually entered Slack ID. The identity change event
// triggers the first stats run.
func (m *Manager) SetSlackID(id string) error {
	return m.identity.SetSlackID(id)
}

// ClearIdentity forgets the stored Slack ID.
func (m *Manager) ClearIdentity() error {
	return m.identity.Clear()
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// StatsURL returns the all-time endpoint for the current identity, or ""
// when there is none.
func (m *Manager) StatsURL() string {
	userID := m.identity.UserID()
	if m.client == nil || userID == "" {
		return ""
	}
	return m.client.StatsURL(userID, nil)
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close stops the poll loops and closes all services.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
		}
		if m.identity != nil {
			if err := m.identity.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		m.wg.Wait()

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
