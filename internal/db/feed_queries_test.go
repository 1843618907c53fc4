package db

import (
	"testing"
	"time"

	"github.com/j-veylop/hackdash/internal/models"
)

func TestReplaceFeedItems(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	published := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	items := []models.FeedItem{
		{Title: "Sprig", Link: "https://sprig.hackclub.com", Snippet: "Make a game", Published: published, Status: models.FeedStatusActive},
		{Title: "Blot", Link: "https://blot.hackclub.com", Status: models.FeedStatusEnded},
		{Title: "Untitled", Status: models.FeedStatusDraft},
	}
	if err := db.ReplaceFeedItems(items); err != nil {
		t.Fatalf("ReplaceFeedItems failed: %v", err)
	}

	got, err := db.GetFeedItems()
	if err != nil {
		t.Fatalf("GetFeedItems failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("items = %d, want 3", len(got))
	}
	if got[0].Title != "Sprig" || got[1].Title != "Blot" || got[2].Title != "Untitled" {
		t.Errorf("order = %q, %q, %q", got[0].Title, got[1].Title, got[2].Title)
	}
	if !got[0].Published.Equal(published) {
		t.Errorf("Published = %v, want %v", got[0].Published, published)
	}
	if got[0].Snippet != "Make a game" {
		t.Errorf("Snippet = %q", got[0].Snippet)
	}
	if !got[1].Published.IsZero() {
		t.Errorf("missing published should stay zero, got %v", got[1].Published)
	}
	if got[2].Link != "" || got[2].Status != models.FeedStatusDraft {
		t.Errorf("link-less item = %+v", got[2])
	}
}

func TestReplaceFeedItems_Replaces(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	first := []models.FeedItem{
		{Title: "A", Link: "https://a"},
		{Title: "B", Link: "https://b"},
	}
	if err := db.ReplaceFeedItems(first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := db.ReplaceFeedItems([]models.FeedItem{{Title: "C", Link: "https://c", Status: models.FeedStatusEnded}}); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := db.GetFeedItems()
	if err != nil {
		t.Fatalf("GetFeedItems failed: %v", err)
	}
	if len(got) != 1 || got[0].Title != "C" {
		t.Errorf("items = %+v, want only C", got)
	}
}

func TestGetFeedItems_UnknownStatus(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	if err := db.ReplaceFeedItems([]models.FeedItem{{Title: "X", Link: "https://x", Status: "weird"}}); err != nil {
		t.Fatalf("ReplaceFeedItems failed: %v", err)
	}
	got, err := db.GetFeedItems()
	if err != nil {
		t.Fatalf("GetFeedItems failed: %v", err)
	}
	if got[0].Status != models.FeedStatusActive {
		t.Errorf("Status = %q, want active", got[0].Status)
	}
}

func TestParseTimeString(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
	}{
		{"2025-02-01 12:00:00", true},
		{"2025-02-01T12:00:00Z", true},
		{"2025-02-01T12:00:00.123Z", true},
		{"yesterday", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, ok := parseTimeString(tt.in)
			if ok != tt.wantOK {
				t.Errorf("parseTimeString(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
		})
	}
}
