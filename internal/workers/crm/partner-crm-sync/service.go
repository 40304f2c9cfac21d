package partnercrmsync

import (
	"context"
	stderrors "errors"
	"strings"

	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/common/zoho"
	"finportal/internal/leads"
	"finportal/internal/models"
)

type Service struct {
	config *Config
	leads  LeadReader
	crm    CRM
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{config: config, leads: deps.Leads, crm: deps.CRM, logger: deps.Logger}
}

// Execute creates a CRM lead for a partner registration. Other lead kinds
// are skipped, and an existing CRM lead with the same email is reused.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if models.LeadKind(input.Kind) != models.LeadKindPartner {
		return &Output{Skipped: true}, nil
	}

	lead, err := s.leads.GetByID(ctx, input.LeadID)
	if err != nil {
		return nil, err
	}

	if lead.Email != "" {
		existing, err := s.crm.SearchLeadsByEmail(ctx, lead.Email)
		if err != nil {
			return nil, crmError(err)
		}
		if len(existing) > 0 && existing[0].ID != "" {
			s.logger.Info("Partner already in CRM", map[string]interface{}{
				"leadId":    lead.ID,
				"crmLeadId": existing[0].ID,
			})
			return &Output{Synced: true, Existing: true, CRMLeadID: existing[0].ID}, nil
		}
	}

	crmLeadID, err := s.crm.CreateLead(ctx, s.toCRMLead(lead))
	if err != nil {
		return nil, crmError(err)
	}

	s.logger.Info("Partner synced to CRM", map[string]interface{}{
		"leadId":    lead.ID,
		"crmLeadId": crmLeadID,
	})
	return &Output{Synced: true, CRMLeadID: crmLeadID}, nil
}

func (s *Service) toCRMLead(lead *models.Lead) *zoho.Lead {
	first, last := splitName(lead.Name)

	company, _ := lead.Payload["type"].(string)
	if sub, ok := lead.Payload["subType"].(string); ok && sub != "" {
		company = strings.TrimSpace(company + " " + sub)
	}

	return &zoho.Lead{
		FirstName:   first,
		LastName:    last,
		Email:       lead.Email,
		Mobile:      lead.Mobile,
		Company:     company,
		Source:      s.config.LeadSource,
		Status:      "Not Contacted",
		Description: leads.Summary(lead),
	}
}

// splitName puts everything but the last word in the first name. Zoho
// requires Last_Name, so a single word goes there.
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", "Unknown"
	case 1:
		return "", parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

func crmError(err error) *errors.StandardError {
	stdErr := errors.NewCRMSyncFailedError(err)
	var apiErr *zoho.APIError
	if stderrors.As(err, &apiErr) && !apiErr.Transient() {
		stdErr.Retryable = false
	}
	return stdErr
}
