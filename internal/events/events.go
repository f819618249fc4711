package events

import "time"

// LeadCreatedV1 announces a freshly captured lead. The version suffix is
// part of the contract: consumers dispatch on Type.
type LeadCreatedV1 struct {
	Type       string    `json:"type"`
	TenantID   string    `json:"tenantId"`
	LeadID     string    `json:"leadId"`
	ChatbotID  string    `json:"chatbotId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Score      int       `json:"score"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurredAt"`
}

// TypeLeadCreatedV1 is the Type value stamped on LeadCreatedV1 payloads.
const TypeLeadCreatedV1 = "lead.created.v1"
