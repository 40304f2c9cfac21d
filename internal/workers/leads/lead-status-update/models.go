package leadstatusupdate

import (
	"context"

	"finportal/internal/common/logger"
	"finportal/internal/models"
)

type Input struct {
	LeadID string            `json:"leadId"`
	Status models.LeadStatus `json:"status"`
	Reason string            `json:"reason,omitempty"`
}

type Output struct {
	LeadID string            `json:"leadId"`
	Status models.LeadStatus `json:"status"`
}

// LeadStatusWriter is satisfied by leads.Repository.
type LeadStatusWriter interface {
	SetStatus(ctx context.Context, id string, status models.LeadStatus) error
}

type ServiceDependencies struct {
	Leads  LeadStatusWriter
	Logger logger.Logger
}
