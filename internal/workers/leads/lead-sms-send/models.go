package leadsmssend

import (
	"context"

	"finportal/internal/common/logger"
)

type Input struct {
	LeadID string `json:"leadId"`
	Kind   string `json:"kind"`
	Name   string `json:"name,omitempty"`
	Mobile string `json:"mobile"`
}

type Output struct {
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
}

// SMSSender is satisfied by aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, mobile, message string) (string, error)
}

type ServiceDependencies struct {
	Sender SMSSender
	Logger logger.Logger
}
