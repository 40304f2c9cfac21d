package leadstatusupdate

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"finportal/internal/common/config"
	"finportal/internal/common/errors"
	"finportal/internal/common/logger"
	"finportal/internal/models"
)

type MockLeads struct {
	mock.Mock
}

func (m *MockLeads) SetStatus(ctx context.Context, id string, status models.LeadStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func createMockJob(variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:           33,
		Type:          TaskType,
		BpmnProcessId: "lead-capture",
		CustomHeaders: "{}",
		Retries:       3,
		Variables:     string(variablesJSON),
	}}
}

func newTestHandler(t *testing.T, leads LeadStatusWriter) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Leads:        leads,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func TestNewHandler_RequiresStore(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig()})
	assert.Error(t, err)
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, &MockLeads{})

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
	}{
		{
			name:      "notified",
			variables: map[string]interface{}{"leadId": "lead-1", "status": "notified"},
		},
		{
			name:      "failed with reason",
			variables: map[string]interface{}{"leadId": "lead-1", "status": "failed", "reason": "SES rejected"},
		},
		{
			name:      "status outside workflow range",
			variables: map[string]interface{}{"leadId": "lead-1", "status": "received"},
			wantErr:   true,
		},
		{
			name:      "missing lead",
			variables: map[string]interface{}{"status": "notified"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := h.parseInput(createMockJob(tt.variables))
			if tt.wantErr {
				require.Error(t, err)
				stdErr, ok := errors.AsStandardError(err)
				require.True(t, ok)
				assert.Equal(t, errors.ErrCodeValidationFailed, stdErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "lead-1", input.LeadID)
		})
	}
}

func TestService_Execute(t *testing.T) {
	leads := &MockLeads{}
	leads.On("SetStatus", mock.Anything, "lead-1", models.LeadStatusNotified).Return(nil)
	h := newTestHandler(t, leads)

	out, err := h.service.Execute(context.Background(), &Input{LeadID: "lead-1", Status: models.LeadStatusNotified})
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusNotified, out.Status)
	leads.AssertExpectations(t)
}

func TestService_Execute_UnknownLead(t *testing.T) {
	leads := &MockLeads{}
	leads.On("SetStatus", mock.Anything, "gone", models.LeadStatusFailed).Return(errors.NewLeadNotFoundError("gone"))
	h := newTestHandler(t, leads)

	_, err := h.service.Execute(context.Background(), &Input{LeadID: "gone", Status: models.LeadStatusFailed})
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeLeadNotFound, stdErr.Code)
	assert.False(t, stdErr.Retryable)
}

func TestCreateConfigFromAppConfig(t *testing.T) {
	appCfg := &config.Config{Workers: map[string]config.WorkerConfig{
		TaskType: {Enabled: false, MaxJobsActive: 3, Timeout: 2500},
	}}

	cfg := createConfigFromAppConfig(appCfg, nil)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 3, cfg.MaxJobsActive)
	assert.Equal(t, "2.5s", cfg.Timeout.String())
}
