// Package models defines data structures and domain types.
package models

import "time"

// Identity is the signed-in user. SlackID doubles as the statistics userId.
type Identity struct {
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
	SlackID      string    `json:"slackId"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
}

// HasUserID reports whether statistics can be fetched for this identity.
func (i *Identity) HasUserID() bool {
	return i != nil && i.SlackID != ""
}

// DisplayName returns the best human name available.
func (i *Identity) DisplayName() string {
	switch {
	case i == nil:
		return ""
	case i.Name != "":
		return i.Name
	case i.Email != "":
		return i.Email
	default:
		return i.SlackID
	}
}
