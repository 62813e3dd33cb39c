// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-form-workers/internal/common/camunda"
	"loan-form-workers/internal/common/config"
	"loan-form-workers/internal/common/database"
	"loan-form-workers/internal/common/logger"
	"loan-form-workers/internal/formfill/filler"
	"loan-form-workers/internal/formfill/formlock"
	"loan-form-workers/internal/formfill/formstore"
	"loan-form-workers/internal/formfill/layout"
	"loan-form-workers/internal/formfill/report"
	"loan-form-workers/pkg/registry"

	gaf "loan-form-workers/internal/workers/application/generate-application-form"
)

const e2eApplicationID = "E2E-APP-0001"

// requireServices skips unless FORMS_E2E is set; the run needs the
// postgres, redis, elasticsearch and zeebe instances named in configs/.
func requireServices(t *testing.T) *config.Config {
	t.Helper()
	if os.Getenv("FORMS_E2E") == "" {
		t.Skip("set FORMS_E2E=1 to run against live services")
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestFullE2E(t *testing.T) {
	cfg := requireServices(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// ==========================
	// 1. Service connectivity
	// ==========================
	zeebe, err := camunda.NewClientWithConfig(camunda.ConfigFrom(cfg.Camunda))
	require.NoError(t, err, "zeebe connection failed")
	defer zeebe.Close()
	require.NoError(t, zeebe.HealthCheck(ctx))

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	require.NoError(t, pg.Ping(ctx), "postgres ping failed")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()
	require.NoError(t, rdb.Ping(ctx), "redis ping failed")

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
	require.NoError(t, err)
	require.NoError(t, es.Ping(), "elasticsearch ping failed")
	require.NoError(t, es.EnsureReportIndex(ctx, cfg.Forms.ReportIndex))

	// ==========================
	// 2. Database tables and test data
	// ==========================
	createTables(ctx, t, pg)

	// ==========================
	// 3. Form generation
	// ==========================
	dir := t.TempDir()
	fs := afero.NewOsFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "loan_application.pdf"), []byte("%PDF-1.7"), 0o644))

	m := mapping(t)
	var widgets []string
	for _, id := range layout.Default.IDs() {
		if _, ok := m[id]; ok {
			widgets = append(widgets, widgetName(id))
		}
	}
	doc := filler.NewMemoryDocument(widgets...)

	log := logger.NewTestLogger(t)
	handler := gaf.NewHandler(&gaf.Config{
		TemplateDir:   dir,
		OutputDir:     filepath.Join(dir, "out"),
		LayoutVersion: "v1",
		LockTTL:       time.Minute,
		Timeout:       time.Minute,
	}, gaf.Dependencies{
		Registry: &registry.TemplateRegistry{
			DefaultTemplate: "loan_application",
			Templates:       []registry.Template{{Name: "loan_application", File: "loan_application.pdf", LayoutVersion: "v1"}},
		},
		Fs:        fs,
		Filler:    filler.New(filler.WithFs(fs), filler.WithOpener(filler.MemoryOpener(doc)), filler.WithLogger(log)),
		Records:   formstore.NewApplicationStore(pg.DB),
		Documents: formstore.NewDocumentStore(pg.DB, log),
		Locker:    formlock.NewLocker(rdb.Client),
		Reports:   report.NewIndexer(es.Client, cfg.Forms.ReportIndex),
	}, log)

	out, err := handler.Execute(ctx, &gaf.Input{ApplicationID: e2eApplicationID, RequestedBy: "e2e"})
	require.NoError(t, err)
	assert.Empty(t, out.MissingFields)
	assert.FileExists(t, out.PDFPath)

	var count int
	require.NoError(t, pg.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM application_documents WHERE id = $1`, out.DocumentID).Scan(&count))
	assert.Equal(t, 1, count)

	t.Log("full form generation pipeline passed")
}

func createTables(ctx context.Context, t *testing.T, pg *database.PostgresClient) {
	t.Helper()
	queries := []string{
		`CREATE TABLE IF NOT EXISTS application_cascades (
			application_id VARCHAR(255) PRIMARY KEY,
			record JSONB NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS application_documents (
			id VARCHAR(255) PRIMARY KEY,
			application_id VARCHAR(255) NOT NULL,
			template_name VARCHAR(255) NOT NULL,
			layout_version VARCHAR(50) NOT NULL,
			file_path TEXT NOT NULL,
			missing_fields TEXT[] NOT NULL DEFAULT '{}',
			field_count INTEGER NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id SERIAL PRIMARY KEY,
			event_type VARCHAR(100),
			resource_type VARCHAR(100),
			resource_id VARCHAR(255),
			details JSONB,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, q := range queries {
		_, err := pg.DB.ExecContext(ctx, q)
		require.NoError(t, err)
	}

	record, err := json.Marshal(testRecord())
	require.NoError(t, err)
	_, err = pg.DB.ExecContext(ctx, `
		INSERT INTO application_cascades (application_id, record) VALUES ($1, $2)
		ON CONFLICT (application_id) DO UPDATE SET record = EXCLUDED.record`,
		e2eApplicationID, record)
	require.NoError(t, err)
}
