// internal/formfill/formstore/store.go
package formstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"loan-form-workers/internal/common/logger"
)

var (
	ErrApplicationNotFound  = errors.New("APPLICATION_NOT_FOUND")
	ErrDatabaseQueryFailed  = errors.New("DATABASE_CONNECTION_FAILED")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

// ApplicationStore reads cascade records, the fully nested application
// snapshot kept alongside each application.
type ApplicationStore struct {
	db *sql.DB
}

func NewApplicationStore(db *sql.DB) *ApplicationStore {
	return &ApplicationStore{db: db}
}

// LoadRecord returns the cascade of applicationID. Numbers are decoded as
// json.Number.
func (s *ApplicationStore) LoadRecord(ctx context.Context, applicationID string) (map[string]interface{}, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT record FROM application_cascades
		WHERE application_id = $1`, applicationID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrApplicationNotFound, applicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load cascade: %v", ErrDatabaseQueryFailed, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var record map[string]interface{}
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("decode cascade of %s: %w", applicationID, err)
	}
	return record, nil
}

// Document describes one generated form.
type Document struct {
	ID            string
	ApplicationID string
	TemplateName  string
	LayoutVersion string
	FilePath      string
	MissingFields []string
	FieldCount    int
	RequestedBy   string
	CreatedAt     time.Time
}

// DocumentStore records generated forms and their audit trail.
type DocumentStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewDocumentStore(db *sql.DB, log logger.Logger) *DocumentStore {
	return &DocumentStore{db: db, logger: log}
}

func (s *DocumentStore) Record(ctx context.Context, doc Document) error {
	createdAt := doc.CreatedAt.UTC().Format(time.RFC3339)
	missing := doc.MissingFields
	if missing == nil {
		missing = []string{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO application_documents (
			id, application_id, template_name, layout_version,
			file_path, missing_fields, field_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		doc.ID,
		doc.ApplicationID,
		doc.TemplateName,
		doc.LayoutVersion,
		doc.FilePath,
		pq.Array(missing),
		doc.FieldCount,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert document: %v", ErrDatabaseInsertFailed, err)
	}

	// Audit failures never fail the generation.
	details, err := json.Marshal(map[string]interface{}{
		"documentId":    doc.ID,
		"templateName":  doc.TemplateName,
		"missingFields": len(missing),
		"requestedBy":   doc.RequestedBy,
	})
	if err != nil {
		details = []byte("{}")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"form_generated",
		"application",
		doc.ApplicationID,
		details,
		createdAt,
	)
	if err != nil {
		s.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err.Error(),
			"applicationId": doc.ApplicationID,
			"documentId":    doc.ID,
		})
	}
	return nil
}
