package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
app:
  name: finportal
database:
  postgres:
    host: localhost
    database: portal
    user: portal
  elasticsearch:
    addresses: ["http://localhost:9200"]
auth:
  keycloak:
    url: http://localhost:8180/
    realm: portal
    client_id: portal-web
    client_secret: ${TEST_KC_SECRET}
workers:
  lead-email-send:
    enabled: true
  lead-sms-send:
    enabled: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	t.Setenv("TEST_KC_SECRET", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.GetURL())
	assert.Equal(t, "research-reports", cfg.Database.Elasticsearch.ReportsIndex)
	assert.Equal(t, 300, cfg.Cache.TTL)
	assert.Equal(t, "__session", cfg.Auth.SessionCookie)
	assert.Equal(t, "ADMIN", cfg.Auth.Keycloak.AdminRole)
	assert.Equal(t, "lead-capture", cfg.Camunda.LeadProcessID)
	assert.Equal(t, "s3cret", cfg.Auth.Keycloak.ClientSecret)
	assert.Equal(t, "http://localhost:8180/realms/portal", cfg.Auth.Keycloak.RealmURL())

	emailWorker := cfg.Workers["lead-email-send"]
	assert.Equal(t, 5, emailWorker.MaxJobsActive)
	assert.Equal(t, 3, emailWorker.MaxRetries)
}

func TestLoadFromFile_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "missing postgres host",
			body: "auth:\n  keycloak:\n    url: http://kc\n    realm: r\n    client_id: c\n",
			want: "database.postgres.host",
		},
		{
			name: "camunda enabled without broker",
			body: minimalYAML + "camunda:\n  enabled: true\n",
			want: "camunda.broker_address",
		},
		{
			name: "cache enabled without redis",
			body: minimalYAML + "cache:\n  enabled: true\n",
			want: "database.redis.address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestWorkerHelpers(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"lead-sms-send": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "lead-sms-send"))
	assert.True(t, IsWorkerEnabled(cfg, "lead-email-send"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "lead-sms-send").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown").MaxJobsActive)
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}
