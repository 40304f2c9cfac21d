package leademailsend

import (
	"context"
	"time"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/leads"
	"finportal/internal/models"
)

type Service struct {
	config *Config
	leads  LeadReader
	sender EmailSender
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		leads:  deps.Leads,
		sender: deps.Sender,
		logger: deps.Logger,
	}
}

// Execute renders the lead notification and sends it to the ops inbox.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	lead, err := s.leads.GetByID(ctx, input.LeadID)
	if err != nil {
		return nil, err
	}

	email, err := leads.NotificationEmail(lead, s.config.OpsInbox)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	messageID, err := s.sender.Send(ctx, email)
	if err != nil {
		return nil, errors.NewNotificationSendFailedError(models.ChannelEmail, err)
	}

	s.logger.Info("Lead notification sent", map[string]interface{}{
		"leadId":    lead.ID,
		"kind":      lead.Kind,
		"messageId": messageID,
	})

	return &Output{
		Sent:      true,
		MessageID: messageID,
		Recipient: s.config.OpsInbox,
		SentAt:    time.Now(),
	}, nil
}
