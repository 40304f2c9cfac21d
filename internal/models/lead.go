// internal/models/lead.go
package models

import "time"

// LeadKind names the form a lead came from.
type LeadKind string

const (
	LeadKindQuote        LeadKind = "quote"
	LeadKindScheduleCall LeadKind = "schedule-call"
	LeadKindSubscribe    LeadKind = "subscribe"
	LeadKindPartner      LeadKind = "b2b-partner"
	LeadKindDemat        LeadKind = "demat"
	LeadKindInvestment   LeadKind = "investment"
	LeadKindCreditCard   LeadKind = "credit-card"
)

type LeadStatus string

const (
	LeadStatusReceived   LeadStatus = "received"
	LeadStatusDispatched LeadStatus = "dispatched"
	LeadStatusNotified   LeadStatus = "notified"
	LeadStatusFailed     LeadStatus = "failed"
)

// Lead is the audit record of one form submission. Payload keeps the
// submitted fields as received.
type Lead struct {
	ID        string                 `json:"id" db:"id"`
	Kind      LeadKind               `json:"kind" db:"kind"`
	Name      string                 `json:"name" db:"name"`
	Email     string                 `json:"email" db:"email"`
	Mobile    string                 `json:"mobile" db:"mobile"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
	Status    LeadStatus             `json:"status" db:"status"`
	CreatedAt time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time              `json:"updatedAt" db:"updated_at"`
}

type Subscriber struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
