// Package identity tracks the signed-in user with file watching and persistence.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/hackdash/internal/logger"
	"github.com/j-veylop/hackdash/internal/models"
)

// ErrNoCredentials means Resolve has nothing to refresh with.
var ErrNoCredentials = errors.New("no refresh token or client credentials configured")

// Event represents an identity service event.
type Event struct {
	Error    error
	Identity *models.Identity
	Type     EventType
}

// EventType defines the type of identity event.
type EventType int

const (
	// EventLoaded is sent once the identity file has been read.
	EventLoaded EventType = iota
	// EventChanged is sent when the file was edited outside the app.
	EventChanged
	// EventUpdated is sent after the app itself saved a new identity.
	EventUpdated
	// EventResolved is sent after a token refresh filled in the Slack ID.
	EventResolved
	// EventError is sent when reading or watching the file fails.
	EventError
)

// Config holds configuration for the identity service.
type Config struct {
	FilePath        string
	SlackIDOverride string
	OAuth           OAuthConfig
}

// Service manages the identity file with change notifications.
type Service struct {
	identity      models.Identity
	config        Config
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
	closeOnce     sync.Once
	mu            sync.RWMutex
}

// DefaultPath returns the default identity file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "identity.json"
	}
	return filepath.Join(home, ".config", "hackdash", "identity.json")
}

// New creates a new identity service and starts file watching.
func New(config Config) (*Service, error) {
	if config.FilePath == "" {
		config.FilePath = DefaultPath()
	}

	s := &Service{
		config:    config,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
	}

	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := s.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load identity: %w", err)
		}
		if err := s.save(); err != nil {
			return nil, fmt.Errorf("failed to create identity file: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventLoaded, Identity: s.snapshot()})

	return s, nil
}

// Events returns the event channel for subscribing to identity changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Path returns the identity file path.
func (s *Service) Path() string {
	return s.config.FilePath
}

// Identity returns a copy of the current identity.
func (s *Service) Identity() models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id := s.identity
	if s.config.SlackIDOverride != "" {
		id.SlackID = s.config.SlackIDOverride
	}
	return id
}

// UserID returns the Slack ID used for statistics, or "" if unknown.
func (s *Service) UserID() string {
	if s.config.SlackIDOverride != "" {
		return s.config.SlackIDOverride
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity.SlackID
}

// SetSlackID stores a manually entered Slack ID. An empty id clears it.
func (s *Service) SetSlackID(id string) error {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	prev := s.identity
	s.identity.SlackID = id
	s.identity.UpdatedAt = time.Now().UTC()
	if err := s.saveLocked(); err != nil {
		s.identity = prev
		s.mu.Unlock()
		return fmt.Errorf("failed to save identity: %w", err)
	}
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventUpdated, Identity: s.snapshot()})
	return nil
}

// Clear forgets the stored Slack ID so a different one can be entered.
func (s *Service) Clear() error {
	return s.SetSlackID("")
}

func (s *Service) snapshot() *models.Identity {
	id := s.Identity()
	return &id
}

// load reads the identity file.
func (s *Service) load() error {
	data, err := os.ReadFile(s.config.FilePath)
	if err != nil {
		return err
	}

	id, err := parseIdentity(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()
	return nil
}

func parseIdentity(data []byte) (models.Identity, error) {
	var id models.Identity
	if len(strings.TrimSpace(string(data))) == 0 {
		return id, nil
	}
	if err := json.Unmarshal(data, &id); err != nil {
		return id, fmt.Errorf("failed to parse identity file: %w", err)
	}
	id.SlackID = strings.TrimSpace(id.SlackID)
	return id, nil
}

func (s *Service) save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

// saveLocked writes the identity file (must hold lock).
func (s *Service) saveLocked() error {
	data, err := json.MarshalIndent(s.identity, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}

	// Write to temp file first, then rename
	tmpFile := s.config.FilePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, s.config.FilePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	// Watch the directory so atomic renames are seen.
	dir := filepath.Dir(s.config.FilePath)
	if err := watcher.Add(dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(s.config.FilePath) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			return
		}
	}
}

// handleFileChange reloads the identity after an external change.
func (s *Service) handleFileChange() {
	before := s.UserID()

	if err := s.load(); err != nil {
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	id := s.snapshot()
	if id.SlackID != before {
		logger.Info("identity changed on disk", "slack_id", id.SlackID)
	}
	s.sendEvent(Event{Type: EventChanged, Identity: id})
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)
		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}

// Resolve returns the Slack ID, refreshing it through OAuth when only a
// refresh token is known.
func (s *Service) Resolve(ctx context.Context) (string, error) {
	if id := s.UserID(); id != "" {
		return id, nil
	}

	s.mu.RLock()
	refreshToken := s.identity.RefreshToken
	s.mu.RUnlock()

	if refreshToken == "" || s.config.OAuth.ClientID == "" {
		return "", ErrNoCredentials
	}

	claims, newRefresh, err := s.config.OAuth.refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.identity.SlackID = claims.SlackID
	if claims.Name != "" {
		s.identity.Name = claims.Name
	}
	if claims.Email != "" {
		s.identity.Email = claims.Email
	}
	if newRefresh != "" {
		s.identity.RefreshToken = newRefresh
	}
	s.identity.UpdatedAt = time.Now().UTC()
	err = s.saveLocked()
	s.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to save identity: %w", err)
	}

	s.sendEvent(Event{Type: EventResolved, Identity: s.snapshot()})
	return claims.SlackID, nil
}
