package leadsmssend

import (
	"bytes"
	"context"
	"strings"
	"text/template"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/leads"
	"finportal/internal/models"
)

// SMS bodies stay under one 160 character segment for typical names.
var messageTemplate = template.Must(template.New("sms").Parse(
	`Hi {{.Name}}, thank you for your {{.Title}} with {{.Brand}}. Our advisor will contact you shortly. Ref {{.Ref}}`))

type Service struct {
	config *Config
	sender SMSSender
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{config: config, sender: deps.Sender, logger: deps.Logger}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !s.config.SMSEnabled || s.sender == nil {
		return &Output{Status: models.NotificationDisabled}, nil
	}

	message, err := s.render(input)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	messageID, err := s.sender.SendSMS(ctx, input.Mobile, message)
	if err != nil {
		return nil, errors.NewNotificationSendFailedError(models.ChannelSMS, err)
	}

	s.logger.Info("Lead confirmation SMS sent", map[string]interface{}{
		"leadId":    input.LeadID,
		"messageId": messageID,
	})
	return &Output{Status: models.NotificationSent, MessageID: messageID}, nil
}

func (s *Service) render(input *Input) (string, error) {
	name := strings.Fields(input.Name)
	first := "there"
	if len(name) > 0 {
		first = name[0]
	}
	ref := input.LeadID
	if len(ref) > 8 {
		ref = ref[:8]
	}

	var buf bytes.Buffer
	err := messageTemplate.Execute(&buf, map[string]string{
		"Name":  first,
		"Title": strings.ToLower(leads.Title(models.LeadKind(input.Kind))),
		"Brand": s.config.BrandName,
		"Ref":   strings.ToUpper(ref),
	})
	return buf.String(), err
}
