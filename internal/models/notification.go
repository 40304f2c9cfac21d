// internal/models/notification.go
package models

// Notification records one outbound message sent for a lead.
type Notification struct {
	LeadID    string `json:"leadId"`
	Channel   string `json:"channel"` // "email", "sms"
	Recipient string `json:"recipient"`
	Status    string `json:"status"` // "sent", "failed", "disabled"
	MessageID string `json:"messageId,omitempty"`
	SentAt    string `json:"sentAt,omitempty"`
}

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	NotificationSent     = "sent"
	NotificationFailed   = "failed"
	NotificationDisabled = "disabled"
)

// NotificationTemplate is a subject/body pair rendered with text/template.
type NotificationTemplate struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"htmlBody,omitempty"`
}
