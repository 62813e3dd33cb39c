package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: loan-form-workers
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: loans
    user: loans
    password: ${TEST_FORMS_PG_PASSWORD}
  elasticsearch:
    addresses: ["http://localhost:9200"]
  redis:
    address: localhost:6379
workers:
  generate-application-form:
    enabled: true
    max_jobs_active: 2
forms:
  template_dir: /srv/templates
  output_dir: /srv/output
  strict: true
notifications:
  ses:
    drift_recipients: ["forms@example.com"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// ==========================
// LoadFromFile
// ==========================

func TestLoadFromFile_DefaultsAndExpansion(t *testing.T) {
	t.Setenv("TEST_FORMS_PG_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "http://localhost:9200", cfg.Database.Elasticsearch.URL)

	assert.Equal(t, "/srv/templates", cfg.Forms.TemplateDir)
	assert.Equal(t, "/srv/output", cfg.Forms.OutputDir)
	assert.True(t, cfg.Forms.Strict)
	assert.Equal(t, "configs/templates.json", cfg.Forms.RegistryPath)
	assert.Equal(t, "form-generation-reports", cfg.Forms.ReportIndex)
	assert.Equal(t, "v1", cfg.Forms.LayoutVersion)
	assert.Equal(t, time.Minute, cfg.Forms.LockTTLDuration())

	assert.Equal(t, []string{"forms@example.com"}, cfg.Notifications.SES.DriftRecipients)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "info", cfg.Logging.Level)

	wc := GetWorkerConfig(cfg, "generate-application-form")
	assert.True(t, wc.Enabled)
	assert.Equal(t, 2, wc.MaxJobsActive)
	assert.Equal(t, 30000, wc.Timeout)
	assert.Equal(t, 3, wc.MaxRetries)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("FORMS_OUTPUT_DIR", "/mnt/forms")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)
	assert.Equal(t, "/mnt/forms", cfg.Forms.OutputDir)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// ==========================
// validateConfig
// ==========================

func validConfig() *Config {
	cfg := &Config{}
	cfg.Camunda.BrokerAddress = "localhost:26500"
	cfg.Database.Postgres = PostgresConfig{Host: "localhost", Database: "loans", User: "loans"}
	cfg.Database.Elasticsearch.URL = "http://localhost:9200"
	cfg.Database.Redis.Address = "localhost:6379"
	return cfg
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no broker", func(c *Config) { c.Camunda.BrokerAddress = "" }, "camunda.broker_address"},
		{"no postgres host", func(c *Config) { c.Database.Postgres.Host = "" }, "database.postgres.host"},
		{"no elasticsearch", func(c *Config) { c.Database.Elasticsearch.URL = "" }, "database.elasticsearch"},
		{"no redis", func(c *Config) { c.Database.Redis.Address = "" }, "database.redis.address"},
		{"sns without topic", func(c *Config) { c.Notifications.SNS.Enabled = true }, "topic_arn"},
		{"ses without sender", func(c *Config) { c.Notifications.SES.Enabled = true }, "from_email"},
		{"tracing without endpoint", func(c *Config) { c.Tracing.Enabled = true }, "jaeger_endpoint"},
		{"negative lock ttl", func(c *Config) { c.Forms.LockTTL = -1 }, "lock_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{"off": {Enabled: false}}}
	assert.False(t, IsWorkerEnabled(cfg, "off"))
	assert.True(t, IsWorkerEnabled(cfg, "unlisted"))
}
