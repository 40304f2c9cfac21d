package leademailsend

import (
	"context"
	"time"

	awsx "finportal/internal/common/aws"
	"finportal/internal/common/logger"
	"finportal/internal/models"
)

type Input struct {
	LeadID string `json:"leadId"`
	Kind   string `json:"kind,omitempty"`
}

type Output struct {
	Sent      bool      `json:"sent"`
	MessageID string    `json:"messageId,omitempty"`
	Recipient string    `json:"recipient,omitempty"`
	SentAt    time.Time `json:"sentAt,omitempty"`
}

// LeadReader loads the lead a job refers to.
type LeadReader interface {
	GetByID(ctx context.Context, id string) (*models.Lead, error)
}

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	Send(ctx context.Context, msg awsx.Email) (string, error)
}

type ServiceDependencies struct {
	Leads  LeadReader
	Sender EmailSender
	Logger logger.Logger
}
