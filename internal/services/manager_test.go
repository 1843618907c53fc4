package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/hackdash/internal/config"
	"github.com/j-veylop/hackdash/internal/db"
	"github.com/j-veylop/hackdash/internal/models"
	"github.com/j-veylop/hackdash/internal/usage"
)

var testNow = time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC)

type fakeStats struct {
	mu         sync.Mutex
	seconds    float64
	summaryErr error
}

func (f *fakeStats) RangeTotal(ctx context.Context, userID string, r models.TimeRange) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seconds, nil
}

func (f *fakeStats) Summary(ctx context.Context, userID string, r *models.TimeRange) (*models.StatsSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	if r == nil {
		return &models.StatsSummary{Username: "orpheus", UserID: userID, TotalSeconds: 360000}, nil
	}
	return &models.StatsSummary{TotalSeconds: f.seconds}, nil
}

type fakeFeed struct {
	items []models.FeedItem
	err   error
}

func (f *fakeFeed) Fetch(ctx context.Context) ([]models.FeedItem, error) {
	return f.items, f.err
}

type notification struct {
	title, body string
}

func newTestManager(t *testing.T, slackID string) (*Manager, *fakeStats, *[]notification) {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:         filepath.Join(tmpDir, "test.db"),
		IdentityPath:         filepath.Join(tmpDir, "identity.json"),
		HackatimeBaseURL:     "http://127.0.0.1:0",
		SlackID:              slackID,
		QueryTimeout:         time.Second,
		MaxConcurrentQueries: 4,
		StatsRefreshInterval: time.Hour,
		FeedRefreshInterval:  time.Hour,
		DailyGoalHours:       2,
		HistoryKeepDays:      365,
	}

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })

	stats := &fakeStats{seconds: 3600}
	var notes []notification
	mgr.stats = stats
	mgr.feed = &fakeFeed{}
	mgr.now = func() time.Time { return testNow }
	mgr.notify = func(title, body string) error {
		notes = append(notes, notification{title, body})
		return nil
	}
	return mgr, stats, &notes
}

func waitFor[T ServiceEvent](t *testing.T, ch <-chan ServiceEvent) T {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e := <-ch:
			if ev, ok := e.(T); ok {
				return ev
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestNewManager(t *testing.T) {
	mgr, _, _ := newTestManager(t, "")

	if mgr.Database() == nil {
		t.Error("Database should be initialized")
	}
	if mgr.CachedSnapshot() != nil {
		t.Error("CachedSnapshot() should be nil on a fresh database")
	}
	if mgr.UserID() != "" {
		t.Errorf("UserID() = %q, want empty", mgr.UserID())
	}
	if got := mgr.StatsURL(); got != "" {
		t.Errorf("StatsURL() = %q, want empty without identity", got)
	}
}

func TestManager_RefreshStats(t *testing.T) {
	mgr, _, _ := newTestManager(t, "U123")
	ch, _ := mgr.Subscribe()

	snap, err := mgr.RefreshStats(context.Background())
	if err != nil {
		t.Fatalf("RefreshStats() failed: %v", err)
	}
	if snap.Username() != "orpheus" {
		t.Errorf("Username() = %q", snap.Username())
	}
	if mgr.CachedSnapshot() != snap {
		t.Error("CachedSnapshot() should return the new snapshot")
	}
	if got := mgr.StatsURL(); got != "http://127.0.0.1:0/users/U123/stats" {
		t.Errorf("StatsURL() = %q", got)
	}

	waitFor[StatsRefreshingEvent](t, ch)
	ev := waitFor[StatsUpdatedEvent](t, ch)
	if ev.Snapshot != snap {
		t.Error("StatsUpdatedEvent carries a different snapshot")
	}

	cached, err := mgr.Database().LoadSnapshot(db.CachedStatsKey)
	if err != nil || cached == nil {
		t.Fatalf("LoadSnapshot() = %v, %v", cached, err)
	}
	if len(cached.Daily) != usage.DailyBuckets {
		t.Errorf("cached daily = %d buckets", len(cached.Daily))
	}

	hist, err := mgr.DailyHistory(models.HistoryRange30Days)
	if err != nil {
		t.Fatalf("DailyHistory() failed: %v", err)
	}
	if len(hist.Points) != usage.DailyBuckets {
		t.Errorf("history points = %d, want %d", len(hist.Points), usage.DailyBuckets)
	}
}

func TestManager_RefreshStats_RequiresIdentity(t *testing.T) {
	mgr, _, _ := newTestManager(t, "")

	if _, err := mgr.RefreshStats(context.Background()); !errors.Is(err, usage.ErrIdentityRequired) {
		t.Errorf("RefreshStats() error = %v, want ErrIdentityRequired", err)
	}
}

func TestManager_RefreshStats_BaselineFailureKeepsCache(t *testing.T) {
	mgr, stats, _ := newTestManager(t, "U123")

	first, err := mgr.RefreshStats(context.Background())
	if err != nil {
		t.Fatalf("first RefreshStats() failed: %v", err)
	}

	ch, _ := mgr.Subscribe()
	stats.summaryErr = errors.New("boom")

	if _, err := mgr.RefreshStats(context.Background()); !errors.Is(err, usage.ErrBaseline) {
		t.Fatalf("RefreshStats() error = %v, want ErrBaseline", err)
	}
	ev := waitFor[ErrorEvent](t, ch)
	if ev.Service != "stats" {
		t.Errorf("ErrorEvent.Service = %q, want stats", ev.Service)
	}
	if mgr.CachedSnapshot() != first {
		t.Error("failed run replaced the cached snapshot")
	}

	cached, err := mgr.Database().LoadSnapshot(db.CachedStatsKey)
	if err != nil || cached == nil {
		t.Fatalf("LoadSnapshot() = %v, %v", cached, err)
	}
	if !cached.Timestamp.Equal(first.Timestamp) {
		t.Errorf("cached timestamp = %v, want %v", cached.Timestamp, first.Timestamp)
	}
}

func TestManager_CachedSnapshotAcrossRestart(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:         filepath.Join(tmpDir, "test.db"),
		IdentityPath:         filepath.Join(tmpDir, "identity.json"),
		SlackID:              "U123",
		StatsRefreshInterval: time.Hour,
		FeedRefreshInterval:  time.Hour,
	}

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	mgr.stats = &fakeStats{seconds: 1800}
	mgr.now = func() time.Time { return testNow }
	mgr.notify = func(string, string) error { return nil }
	if _, err := mgr.RefreshStats(context.Background()); err != nil {
		t.Fatalf("RefreshStats() failed: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	reopened, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer reopened.Close()

	snap := reopened.CachedSnapshot()
	if snap == nil {
		t.Fatal("CachedSnapshot() = nil after restart")
	}
	if !snap.Timestamp.Equal(testNow) {
		t.Errorf("Timestamp = %v, want %v", snap.Timestamp, testNow)
	}
	if snap.UserID != "U123" {
		t.Errorf("UserID = %q, want U123", snap.UserID)
	}
}

func TestManager_CachedSnapshotOfAnotherUser(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:         filepath.Join(tmpDir, "test.db"),
		IdentityPath:         filepath.Join(tmpDir, "identity.json"),
		SlackID:              "U123",
		StatsRefreshInterval: time.Hour,
		FeedRefreshInterval:  time.Hour,
	}

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	mgr.stats = &fakeStats{seconds: 1800}
	mgr.now = func() time.Time { return testNow }
	mgr.notify = func(string, string) error { return nil }
	if _, err := mgr.RefreshStats(context.Background()); err != nil {
		t.Fatalf("RefreshStats() failed: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	cfg.SlackID = "U456"
	other, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer other.Close()

	if snap := other.CachedSnapshot(); snap != nil {
		t.Errorf("CachedSnapshot() = snapshot of %q, want nil for U456", snap.UserID)
	}
	if stored, err := other.Database().LoadSnapshot(db.CachedStatsKey); err != nil || stored != nil {
		t.Errorf("stored snapshot = %v, %v; want dropped", stored, err)
	}
	hist, err := other.Database().GetDailyHistory(0, testNow)
	if err != nil {
		t.Fatalf("GetDailyHistory() failed: %v", err)
	}
	if len(hist) != 0 {
		t.Errorf("history of U123 kept: %d points", len(hist))
	}
}

func TestManager_RefreshFeed(t *testing.T) {
	mgr, _, _ := newTestManager(t, "")
	ch, _ := mgr.Subscribe()

	items := []models.FeedItem{
		{Title: "Sprig", Link: "https://sprig.hackclub.com", Status: models.FeedStatusActive},
		{Title: "Boba Drops", Link: "https://boba.hackclub.com", Status: models.FeedStatusEnded},
	}
	mgr.feed = &fakeFeed{items: items}

	got, err := mgr.RefreshFeed(context.Background())
	if err != nil {
		t.Fatalf("RefreshFeed() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("RefreshFeed() = %d items", len(got))
	}
	ev := waitFor[FeedUpdatedEvent](t, ch)
	if len(ev.Items) != 2 {
		t.Errorf("FeedUpdatedEvent items = %d", len(ev.Items))
	}

	stored, err := mgr.Database().GetFeedItems()
	if err != nil {
		t.Fatalf("GetFeedItems() failed: %v", err)
	}
	if len(stored) != 2 || stored[0].Title != "Sprig" {
		t.Errorf("stored feed = %+v", stored)
	}
	if len(mgr.FeedItems()) != 2 {
		t.Errorf("FeedItems() = %d", len(mgr.FeedItems()))
	}

	mgr.feed = &fakeFeed{err: errors.New("offline")}
	if _, err := mgr.RefreshFeed(context.Background()); err == nil {
		t.Error("expected error from failing feed")
	}
	if e := waitFor[ErrorEvent](t, ch); e.Service != "feed" {
		t.Errorf("ErrorEvent.Service = %q, want feed", e.Service)
	}
	if len(mgr.FeedItems()) != 2 {
		t.Error("failed refresh should keep previous items")
	}
}

func TestManager_Start(t *testing.T) {
	mgr, _, _ := newTestManager(t, "U123")
	mgr.feed = &fakeFeed{items: []models.FeedItem{{Title: "Sprig", Link: "https://sprig.hackclub.com"}}}
	ch, _ := mgr.Subscribe()

	mgr.Start()

	waitFor[StatsUpdatedEvent](t, ch)
	waitFor[FeedUpdatedEvent](t, ch)
}

func TestManager_SetSlackID(t *testing.T) {
	mgr, _, _ := newTestManager(t, "")
	ch, _ := mgr.Subscribe()

	// A day outside the daily window belongs to the previous user.
	stale := testNow.AddDate(0, 0, -20).Format(models.DailyDateLayout)
	if _, err := mgr.Database().UpsertDailyHistory([]models.DailyBucket{{Date: stale, Hours: 9}}); err != nil {
		t.Fatalf("UpsertDailyHistory() failed: %v", err)
	}

	if err := mgr.SetSlackID("U999"); err != nil {
		t.Fatalf("SetSlackID() failed: %v", err)
	}

	ev := waitFor[IdentityChangedEvent](t, ch)
	if ev.UserID != "U999" {
		t.Errorf("IdentityChangedEvent.UserID = %q, want U999", ev.UserID)
	}
	// The identity change kicks off the first run.
	updated := waitFor[StatsUpdatedEvent](t, ch)
	if updated.Snapshot.AllTime.UserID != "U999" {
		t.Errorf("snapshot user = %q, want U999", updated.Snapshot.AllTime.UserID)
	}

	hist, err := mgr.DailyHistory(models.HistoryRange30Days)
	if err != nil {
		t.Fatalf("DailyHistory() failed: %v", err)
	}
	for _, p := range hist.Points {
		if p.Date.Format(models.DailyDateLayout) == stale {
			t.Error("history of the previous user should be dropped")
		}
	}
}

// switchingStats blocks the all-time query of UOLD until released and fails
// every baseline of UNEW.
type switchingStats struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *switchingStats) RangeTotal(ctx context.Context, userID string, r models.TimeRange) (float64, error) {
	return 3600, nil
}

func (s *switchingStats) Summary(ctx context.Context, userID string, r *models.TimeRange) (*models.StatsSummary, error) {
	if userID == "UNEW" {
		return nil, errors.New("baseline down")
	}
	if r == nil {
		s.once.Do(func() { close(s.started) })
		<-s.release
	}
	return &models.StatsSummary{Username: "old-user", UserID: userID, TotalSeconds: 3600}, nil
}

func TestManager_RefreshStats_IdentityChangedMidRun(t *testing.T) {
	mgr, _, _ := newTestManager(t, "")
	src := &switchingStats{started: make(chan struct{}), release: make(chan struct{})}
	mgr.stats = src
	ch, _ := mgr.Subscribe()

	if err := mgr.SetSlackID("UOLD"); err != nil {
		t.Fatalf("SetSlackID() failed: %v", err)
	}
	select {
	case <-src.started:
	case <-time.After(3 * time.Second):
		t.Fatal("run for UOLD never started")
	}

	if err := mgr.SetSlackID("UNEW"); err != nil {
		t.Fatalf("SetSlackID() failed: %v", err)
	}
	for waitFor[IdentityChangedEvent](t, ch).UserID != "UNEW" {
	}
	close(src.release)

	// The UNEW run queues behind the UOLD one and fails at baseline.
	for waitFor[ErrorEvent](t, ch).Service != "stats" {
	}

	if snap := mgr.CachedSnapshot(); snap != nil {
		t.Errorf("CachedSnapshot() belongs to %q, want nil", snap.UserID)
	}
	if stored, err := mgr.Database().LoadSnapshot(db.CachedStatsKey); err != nil || stored != nil {
		t.Errorf("stored snapshot = %v, %v; want none", stored, err)
	}
	hist, err := mgr.Database().GetDailyHistory(0, testNow)
	if err != nil {
		t.Fatalf("GetDailyHistory() failed: %v", err)
	}
	if len(hist) != 0 {
		t.Errorf("history of UOLD written back: %d points", len(hist))
	}
}

func TestManager_RefreshStats_DiscardsStaleResult(t *testing.T) {
	mgr, _, _ := newTestManager(t, "U123")
	snap := &models.Snapshot{UserID: "U999", Timestamp: testNow}

	if mgr.persist(snap, testNow) {
		t.Fatal("persist should refuse a snapshot of another user")
	}
	if mgr.CachedSnapshot() != nil {
		t.Error("stale snapshot should not be cached")
	}

	snap.UserID = "U123"
	if !mgr.persist(snap, testNow) {
		t.Error("persist should accept a snapshot of the current user")
	}
}

func TestManager_CheckNotifications(t *testing.T) {
	mgr, _, notes := newTestManager(t, "U123")

	snapWith := func(streakDays int, todaySeconds float64) *models.Snapshot {
		daily := make([]models.DailyBucket, usage.DailyBuckets)
		for i := range daily {
			if i >= len(daily)-streakDays {
				daily[i].Hours = 1
			}
		}
		return &models.Snapshot{Daily: daily, Today: &models.StatsSummary{TotalSeconds: todaySeconds}}
	}

	// First run only records a baseline.
	mgr.checkNotifications(snapWith(3, 3*3600), testNow)
	if len(*notes) != 0 {
		t.Fatalf("baseline run notified: %+v", *notes)
	}

	mgr.checkNotifications(snapWith(3, 3*3600), testNow.Add(time.Hour))
	if len(*notes) != 0 {
		t.Fatalf("unchanged run notified: %+v", *notes)
	}

	mgr.checkNotifications(snapWith(4, 3600), testNow.Add(24*time.Hour))
	if len(*notes) != 1 || (*notes)[0].title != "Streak: 4 days" {
		t.Fatalf("notes = %+v, want streak notification", *notes)
	}

	mgr.checkNotifications(snapWith(4, 2.5*3600), testNow.Add(25*time.Hour))
	if len(*notes) != 2 || (*notes)[1].title != "Daily goal reached" {
		t.Fatalf("notes = %+v, want goal notification", *notes)
	}

	mgr.checkNotifications(snapWith(4, 3*3600), testNow.Add(26*time.Hour))
	if len(*notes) != 2 {
		t.Errorf("goal notified twice: %+v", *notes)
	}
}

func TestManager_Broadcast(t *testing.T) {
	mgr, _, _ := newTestManager(t, "")

	ch, _ := mgr.Subscribe()
	defer mgr.Unsubscribe(ch)

	event := ErrorEvent{Service: "stats"}
	mgr.broadcast(event)

	select {
	case e := <-ch:
		if e != event {
			t.Errorf("Got event %v, want %v", e, event)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for broadcast")
	}
}

func TestManager_Subscription(t *testing.T) {
	mgr, _, _ := newTestManager(t, "")

	ch, cmd := mgr.Subscribe()
	if ch == nil {
		t.Error("Subscribe returned nil channel")
	}
	if cmd == nil {
		t.Error("Subscribe returned nil command")
	}

	mgr.Unsubscribe(ch)

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Channel should be closed")
		}
	case <-time.After(time.Second):
		t.Error("Channel was not closed")
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan ServiceEvent, 1)
	ch <- StatsRefreshingEvent{}

	if msg := WaitForEvent(ch)(); msg == nil {
		t.Error("WaitForEvent cmd returned nil msg")
	}

	close(ch)
	if msg := WaitForEvent(ch)(); msg != nil {
		t.Errorf("WaitForEvent on closed channel = %v, want nil", msg)
	}
}

func TestServiceEvent_Interface(t *testing.T) {
	var _ ServiceEvent = StatsRefreshingEvent{}
	var _ ServiceEvent = StatsUpdatedEvent{}
	var _ ServiceEvent = FeedUpdatedEvent{}
	var _ ServiceEvent = IdentityChangedEvent{}
	var _ ServiceEvent = ErrorEvent{}
}

func TestManager_Close(t *testing.T) {
	mgr := &Manager{}
	if err := mgr.Close(); err != nil {
		t.Errorf("Close() on empty manager = %v", err)
	}

	full, _, _ := newTestManager(t, "")
	if err := full.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if err := full.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}
