// Package models defines data structures and domain types.
package models

import "time"

// FeedStatus is the lifecycle state of a catalog entry.
type FeedStatus string

const (
	// FeedStatusActive marks a program accepting submissions.
	FeedStatusActive FeedStatus = "active"
	// FeedStatusDraft marks an announced but not yet open program.
	FeedStatusDraft FeedStatus = "draft"
	// FeedStatusEnded marks a closed program.
	FeedStatusEnded FeedStatus = "ended"
)

// ParseFeedStatus maps a raw label onto a known status.
func ParseFeedStatus(s string) (FeedStatus, bool) {
	switch FeedStatus(s) {
	case FeedStatusActive, FeedStatusDraft, FeedStatusEnded:
		return FeedStatus(s), true
	}
	return "", false
}

// FeedItem is one catalog entry from the program feed.
type FeedItem struct {
	Published time.Time
	Title     string
	Link      string
	Snippet   string
	Status    FeedStatus
}
