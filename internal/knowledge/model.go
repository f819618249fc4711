package knowledge

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when an entry does not exist for the tenant.
	ErrNotFound = errors.New("knowledge: entry not found")
	// ErrInvalidEntry is returned when a KB entry is missing required fields.
	ErrInvalidEntry = errors.New("knowledge: question and answer are required")
	// ErrInvalidContent is returned when a scraped-content record has no URL.
	ErrInvalidContent = errors.New("knowledge: url is required")
)

// KBEntry is a curated question/answer pair that supplies canned answers
// to the chat context. UsageCount tracks how often the entry has been
// included in a prompt.
type KBEntry struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Tags       []string  `json:"tags"`
	Active     bool      `json:"active"`
	UsageCount int       `json:"usageCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// WebsiteContent is a scraped page snapshot used as grounding context.
type WebsiteContent struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Active    bool      `json:"active"`
	Processed bool      `json:"processed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateEntryRequest is the admin payload for a new KB entry.
type CreateEntryRequest struct {
	TenantID string   `json:"-"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags"`
}

func (r *CreateEntryRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" || strings.TrimSpace(r.Answer) == "" {
		return ErrInvalidEntry
	}
	return nil
}

// UpdateEntryRequest carries optional fields; nil means leave unchanged.
type UpdateEntryRequest struct {
	Question *string   `json:"question"`
	Answer   *string   `json:"answer"`
	Tags     *[]string `json:"tags"`
	Active   *bool     `json:"active"`
}

// CreateContentRequest is the admin payload for a scraped-content record.
type CreateContentRequest struct {
	TenantID string `json:"-"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

func (r *CreateContentRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return ErrInvalidContent
	}
	return nil
}
