package leads

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a lead does not exist for the tenant.
	ErrNotFound = errors.New("leads: lead not found")
	// ErrNoIdentity is returned when a lead has no name, email, or phone.
	ErrNoIdentity = errors.New("leads: at least one of name, email, or phone is required")
)

// Status is a lead's position in the follow-up workflow.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusLost      Status = "lost"
)

// statusTransitions lists the allowed moves. Converted and lost are
// terminal.
var statusTransitions = map[Status][]Status{
	StatusNew:       {StatusContacted, StatusQualified, StatusLost},
	StatusContacted: {StatusQualified, StatusConverted, StatusLost},
	StatusQualified: {StatusConverted, StatusLost},
}

// ValidTransition reports whether a lead may move from one status to
// another.
func ValidTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError reports a rejected status move.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("leads: cannot transition from %s to %s", e.From, e.To)
}

// Scoring is the conversion assessment attached to a captured lead.
type Scoring struct {
	Score              int      `json:"score"`
	Rationale          string   `json:"rationale"`
	RecommendedActions []string `json:"recommendedActions,omitempty"`
}

// Metadata is the audit record stored with a lead: where the capture came
// from and what the scoring said.
type Metadata struct {
	SessionID string   `json:"sessionId,omitempty"`
	Interests []string `json:"interests,omitempty"`
	Scoring   *Scoring `json:"scoring,omitempty"`
}

// Lead is a captured prospect. ChatbotID is set for chat-captured leads
// and empty for manual entries.
type Lead struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	ChatbotID string    `json:"chatbotId,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Source    string    `json:"source"`
	Score     int       `json:"score"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes"`
	Metadata  Metadata  `json:"metadata"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateRequest is the payload for a new lead, whether captured by the
// chat pipeline or entered manually by an operator.
type CreateRequest struct {
	TenantID  string   `json:"-"`
	ChatbotID string   `json:"chatbotId"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	Company   string   `json:"company"`
	Source    string   `json:"source"`
	Score     int      `json:"score"`
	Notes     string   `json:"notes"`
	Metadata  Metadata `json:"metadata"`
}

func (r *CreateRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" && strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.Phone) == "" {
		return ErrNoIdentity
	}
	if r.Score < 0 {
		r.Score = 0
	}
	if r.Score > 100 {
		r.Score = 100
	}
	return nil
}
