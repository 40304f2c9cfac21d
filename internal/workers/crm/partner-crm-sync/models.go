package partnercrmsync

import (
	"context"

	"finportal/internal/common/logger"
	"finportal/internal/common/zoho"
	"finportal/internal/models"
)

type Input struct {
	LeadID string `json:"leadId"`
	Kind   string `json:"kind"`
}

type Output struct {
	Synced    bool   `json:"synced"`
	Skipped   bool   `json:"skipped,omitempty"`
	CRMLeadID string `json:"crmLeadId,omitempty"`
	Existing  bool   `json:"existing,omitempty"`
}

type LeadReader interface {
	GetByID(ctx context.Context, id string) (*models.Lead, error)
}

// CRM is satisfied by zoho.CRMClient.
type CRM interface {
	CreateLead(ctx context.Context, lead *zoho.Lead) (string, error)
	SearchLeadsByEmail(ctx context.Context, email string) ([]zoho.Lead, error)
}

type ServiceDependencies struct {
	Leads  LeadReader
	CRM    CRM
	Logger logger.Logger
}
