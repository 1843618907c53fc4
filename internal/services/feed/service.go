// Package feed fetches the YSWS program catalog.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/j-veylop/hackdash/internal/logger"
	"github.com/j-veylop/hackdash/internal/models"
)

// DefaultURL is the public YSWS catalog feed.
const DefaultURL = "https://ysws.hackclub.com/feed.xml"

// MaxSnippetRunes bounds FeedItem.Snippet.
const MaxSnippetRunes = 280

// Config holds configuration for the feed service.
type Config struct {
	HTTPClient *http.Client
	URL        string
	UserAgent  string
}

// Service fetches and normalizes catalog entries.
type Service struct {
	parser *gofeed.Parser
	url    string
}

// New creates a new feed service.
func New(config Config) *Service {
	if config.URL == "" {
		config.URL = DefaultURL
	}

	parser := gofeed.NewParser()
	parser.Client = config.HTTPClient
	if parser.Client == nil {
		parser.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if config.UserAgent != "" {
		parser.UserAgent = config.UserAgent
	}

	return &Service{parser: parser, url: config.URL}
}

// URL returns the feed location.
func (s *Service) URL() string {
	return s.url
}

// Fetch downloads and parses the feed. RSS, Atom and JSON Feed are accepted.
func (s *Service) Fetch(ctx context.Context) ([]models.FeedItem, error) {
	f, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	items := convert(f)
	logger.Debug("feed fetched", "url", s.url, "items", len(items))
	return items, nil
}

// Parse reads a feed document from r.
func (s *Service) Parse(r io.Reader) ([]models.FeedItem, error) {
	f, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return convert(f), nil
}

func convert(f *gofeed.Feed) []models.FeedItem {
	items := make([]models.FeedItem, 0, len(f.Items))
	for _, it := range f.Items {
		if it == nil {
			continue
		}
		items = append(items, toItem(it))
	}
	return items
}

func toItem(it *gofeed.Item) models.FeedItem {
	body := it.Description
	if strings.TrimSpace(body) == "" {
		body = it.Content
	}

	item := models.FeedItem{
		Title:   strings.TrimSpace(it.Title),
		Link:    strings.TrimSpace(it.Link),
		Snippet: Snippet(body, MaxSnippetRunes),
	}
	switch {
	case it.PublishedParsed != nil:
		item.Published = it.PublishedParsed.UTC()
	case it.UpdatedParsed != nil:
		item.Published = it.UpdatedParsed.UTC()
	}
	item.Status = DetectStatus(it.Categories, item.Title+" "+item.Snippet)
	return item
}

// Snippet strips markup from html, collapses whitespace and truncates the
// result to limit runes.
func Snippet(html string, limit int) string {
	text := html
	if strings.ContainsAny(html, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			text = doc.Text()
		}
	}
	text = strings.Join(strings.Fields(text), " ")

	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}

// DetectStatus reads the status from a category named active, draft or ended.
// Without one, text mentioning that the program ended or closed marks it
// ended; anything else is active.
func DetectStatus(categories []string, text string) models.FeedStatus {
	for _, c := range categories {
		if s, ok := models.ParseFeedStatus(strings.ToLower(strings.TrimSpace(c))); ok {
			return s
		}
	}

	lower := strings.ToLower(text)
	for _, word := range []string{"has ended", "ended", "closed"} {
		if strings.Contains(lower, word) {
			return models.FeedStatusEnded
		}
	}
	return models.FeedStatusActive
}
