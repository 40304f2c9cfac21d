//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	awsx "finportal/internal/common/aws"
	"finportal/internal/common/camunda"
	"finportal/internal/common/config"
	"finportal/internal/common/database"
	"finportal/internal/common/logger"
	"finportal/internal/common/zoho"
	"finportal/internal/content/partners"
	"finportal/internal/leads"
	"finportal/internal/models"
	"finportal/internal/server"

	pcs "finportal/internal/workers/crm/partner-crm-sync"
	les "finportal/internal/workers/leads/lead-email-send"
	lss "finportal/internal/workers/leads/lead-sms-send"
	lsu "finportal/internal/workers/leads/lead-status-update"
)

const bpmnFile = "../../deployments/bpmn/lead-capture.bpmn"

var (
	cfg   *config.Config
	db    *sql.DB
	zeebe *camunda.Client
)

// TestMain needs a running Zeebe gateway and Postgres, configured the same
// way as the services (configs/config.yaml plus environment).
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("e2e: config not loadable, skipping: %v\n", err)
		os.Exit(0)
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err == nil {
		err = pg.Ping(context.Background())
	}
	if err != nil {
		fmt.Printf("e2e: postgres unavailable, skipping: %v\n", err)
		os.Exit(0)
	}
	db = pg.DB
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}

	zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		fmt.Printf("e2e: zeebe unavailable, skipping: %v\n", err)
		os.Exit(0)
	}
	if _, err := zeebe.DeployResource(context.Background(), bpmnFile); err != nil {
		panic(fmt.Sprintf("deploy %s: %v", bpmnFile, err))
	}

	code := m.Run()

	_ = zeebe.Close()
	_ = pg.Close()
	os.Exit(code)
}

type recordingSender struct {
	mu   sync.Mutex
	sent []awsx.Email
}

func (r *recordingSender) Send(_ context.Context, msg awsx.Email) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return fmt.Sprintf("msg-%d", len(r.sent)), nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func zohoStub(t *testing.T, created *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodPost:
			atomic.AddInt32(created, 1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":[{"code":"SUCCESS","status":"success","details":{"id":"zoho-e2e"}}]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func startWorkers(t *testing.T, leadRepo *leads.Repository, sender *recordingSender, crm *zoho.CRMClient) {
	t.Helper()
	log := logger.NewTestLogger(t)
	group := camunda.NewWorkerGroup(zeebe.GetClient(), log)
	t.Cleanup(group.Close)

	wcfg := config.WorkerConfig{Enabled: true, MaxJobsActive: 5, Timeout: 30000}

	emailCfg := les.DefaultConfig()
	emailCfg.OpsInbox = "ops@finportal.test"
	email, err := les.NewHandler(les.HandlerOptions{CustomConfig: emailCfg, Leads: leadRepo, Sender: sender, Logger: log})
	require.NoError(t, err)

	sms, err := lss.NewHandler(lss.HandlerOptions{CustomConfig: lss.DefaultConfig(), Logger: log})
	require.NoError(t, err)

	crmCfg := pcs.DefaultConfig()
	crmCfg.ZohoOAuthToken = "token"
	crmSync, err := pcs.NewHandler(pcs.HandlerOptions{CustomConfig: crmCfg, Leads: leadRepo, CRM: crm, Logger: log})
	require.NoError(t, err)

	status, err := lsu.NewHandler(lsu.HandlerOptions{CustomConfig: lsu.DefaultConfig(), Leads: leadRepo, Logger: log})
	require.NoError(t, err)

	group.Start(les.TaskType, wcfg, email.Handle)
	group.Start(lss.TaskType, wcfg, sms.Handle)
	group.Start(pcs.TaskType, wcfg, crmSync.Handle)
	group.Start(lsu.TaskType, wcfg, status.Handle)
}

func waitForStatus(t *testing.T, id, want string) {
	t.Helper()
	deadline := time.Now().Add(60 * time.Second)
	var got string
	for time.Now().Before(deadline) {
		err := db.QueryRow(`SELECT status FROM leads WHERE id = $1`, id).Scan(&got)
		require.NoError(t, err)
		if got == want {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("lead %s stuck in %q, want %q", id, got, want)
}

func TestPartnerLeadRunsThroughWorkflow(t *testing.T) {
	log := logger.NewTestLogger(t)
	leadRepo := leads.NewRepository(db, log)
	sender := &recordingSender{}

	var created int32
	crm := zoho.NewCRMClient(zohoStub(t, &created).URL, "token", nil)
	startWorkers(t, leadRepo, sender, crm)

	router := server.NewRouter(server.Deps{
		Logger: log,
		API: []server.Registrar{
			leads.NewHandler(leads.Options{
				Leads:      leadRepo,
				Partners:   partners.NewRepository(db, log),
				Dispatcher: leads.NewWorkflowDispatcher(zeebe, cfg.Camunda.LeadProcessID, log),
				Logger:     log,
			}),
		},
	})

	body, _ := json.Marshal(map[string]string{
		"type":    "B2B",
		"subType": "DSA",
		"name":    "Meera Iyer",
		"mobile":  "9812345678",
		"email":   fmt.Sprintf("meera+%d@example.in", time.Now().UnixNano()),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/b2b-partner", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	waitForStatus(t, resp.ID, "notified")

	assert.Equal(t, 1, sender.count())
	assert.Equal(t, int32(1), atomic.LoadInt32(&created))

	var partnerStatus string
	require.NoError(t, db.QueryRow(
		`SELECT status FROM partner_requests WHERE email = (SELECT email FROM leads WHERE id = $1)`, resp.ID,
	).Scan(&partnerStatus))
	assert.Equal(t, "Pending", partnerStatus)
}

func TestQuoteSkipsCRM(t *testing.T) {
	ctx := context.Background()
	log := logger.NewTestLogger(t)
	leadRepo := leads.NewRepository(db, log)
	sender := &recordingSender{}

	var created int32
	crm := zoho.NewCRMClient(zohoStub(t, &created).URL, "token", nil)
	startWorkers(t, leadRepo, sender, crm)

	lead := &models.Lead{
		Kind:    models.LeadKindQuote,
		Name:    "Asha Rao",
		Payload: map[string]interface{}{"product": "home-loan", "amount": "1500000"},
	}
	require.NoError(t, leadRepo.Create(ctx, lead))
	require.NoError(t, leads.NewWorkflowDispatcher(zeebe, cfg.Camunda.LeadProcessID, log).Dispatch(ctx, lead))

	waitForStatus(t, lead.ID, "notified")

	assert.Equal(t, 1, sender.count())
	assert.Zero(t, atomic.LoadInt32(&created))
}
