package leads

import (
	"context"

	awsx "finportal/internal/common/aws"
	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/models"
)

// DefaultProcessID is the BPMN process started for every lead.
const DefaultProcessID = "lead-capture"

// Dispatcher hands a persisted lead to whatever performs its side effects.
type Dispatcher interface {
	Dispatch(ctx context.Context, lead *models.Lead) error
}

// ProcessStarter is satisfied by camunda.Client.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables map[string]interface{}) (int64, error)
}

// WorkflowDispatcher starts one process instance per lead. The workers
// registered for the process send the notifications.
type WorkflowDispatcher struct {
	starter   ProcessStarter
	processID string
	logger    logger.Logger
}

func NewWorkflowDispatcher(starter ProcessStarter, processID string, log logger.Logger) *WorkflowDispatcher {
	if processID == "" {
		processID = DefaultProcessID
	}
	return &WorkflowDispatcher{starter: starter, processID: processID, logger: log}
}

// ProcessVariables are the variables a lead-capture instance starts with.
func ProcessVariables(lead *models.Lead) map[string]interface{} {
	return map[string]interface{}{
		"leadId":  lead.ID,
		"kind":    string(lead.Kind),
		"name":    lead.Name,
		"email":   lead.Email,
		"mobile":  lead.Mobile,
		"summary": Summary(lead),
	}
}

func (d *WorkflowDispatcher) Dispatch(ctx context.Context, lead *models.Lead) error {
	key, err := d.starter.StartProcess(ctx, d.processID, ProcessVariables(lead))
	if err != nil {
		return err
	}
	d.logger.Info("Lead process started", map[string]interface{}{
		"leadId":             lead.ID,
		"kind":               lead.Kind,
		"processInstanceKey": key,
	})
	return nil
}

// EmailSender is satisfied by aws.SESClient.
type EmailSender interface {
	Send(ctx context.Context, msg awsx.Email) (string, error)
}

// MailDispatcher emails the ops inbox directly. It is used when the
// workflow engine is disabled.
type MailDispatcher struct {
	sender   EmailSender
	opsInbox string
	logger   logger.Logger
}

func NewMailDispatcher(sender EmailSender, opsInbox string, log logger.Logger) *MailDispatcher {
	return &MailDispatcher{sender: sender, opsInbox: opsInbox, logger: log}
}

func (d *MailDispatcher) Dispatch(ctx context.Context, lead *models.Lead) error {
	email, err := NotificationEmail(lead, d.opsInbox)
	if err != nil {
		return errors.NewInternalError(err)
	}
	messageID, err := d.sender.Send(ctx, email)
	if err != nil {
		return errors.NewNotificationSendFailedError(models.ChannelEmail, err)
	}
	d.logger.Info("Lead notification emailed", map[string]interface{}{
		"leadId":    lead.ID,
		"kind":      lead.Kind,
		"messageId": messageID,
	})
	return nil
}

// LogDispatcher only logs. It stands in when neither the workflow engine
// nor email is configured.
type LogDispatcher struct {
	logger logger.Logger
}

func NewLogDispatcher(log logger.Logger) *LogDispatcher {
	return &LogDispatcher{logger: log}
}

func (d *LogDispatcher) Dispatch(_ context.Context, lead *models.Lead) error {
	d.logger.Warn("Lead recorded without notification", map[string]interface{}{
		"leadId": lead.ID,
		"kind":   lead.Kind,
	})
	return nil
}
