package leadstatusupdate

import (
	"context"

	"finportal/internal/common/logger"
)

type Service struct {
	config *Config
	leads  LeadStatusWriter
	logger logger.Logger
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{config: config, leads: deps.Leads, logger: deps.Logger}
}

// Execute records the final state of a lead once the workflow has run its
// notifications.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := s.leads.SetStatus(ctx, input.LeadID, input.Status); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"leadId": input.LeadID,
		"status": input.Status,
	}
	if input.Reason != "" {
		fields["reason"] = input.Reason
	}
	s.logger.Info("Lead status updated", fields)

	return &Output{LeadID: input.LeadID, Status: input.Status}, nil
}
