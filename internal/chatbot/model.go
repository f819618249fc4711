package chatbot

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when no active chatbot matches the id.
	ErrNotFound = errors.New("chatbot not found")

	// ErrInvalidName is returned when the chatbot name is missing.
	ErrInvalidName = errors.New("chatbot name is required")
)

// Chatbot is a tenant-owned widget configuration the pipeline operates against.
type Chatbot struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	Name           string    `json:"name"`
	WelcomeMessage string    `json:"welcome_message"`
	Theme          string    `json:"theme"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// PublicConfig is the subset of configuration safe to expose to embedding
// websites. It must never carry tenant internals.
type PublicConfig struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	WelcomeMessage string `json:"welcomeMessage"`
	Theme          string `json:"theme"`
}

// Public strips the chatbot down to its embeddable configuration.
func (c *Chatbot) Public() PublicConfig {
	return PublicConfig{
		ID:             c.ID,
		Name:           c.Name,
		WelcomeMessage: c.WelcomeMessage,
		Theme:          c.Theme,
	}
}

// CreateRequest is the admin payload for creating a chatbot.
type CreateRequest struct {
	TenantID       string `json:"-"`
	Name           string `json:"name"`
	WelcomeMessage string `json:"welcome_message"`
	Theme          string `json:"theme"`
}

// Validate checks required fields.
func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	return nil
}

// UpdateRequest is the admin payload for updating a chatbot. Nil fields are
// left unchanged.
type UpdateRequest struct {
	Name           *string `json:"name"`
	WelcomeMessage *string `json:"welcome_message"`
	Theme          *string `json:"theme"`
	Active         *bool   `json:"active"`
}
