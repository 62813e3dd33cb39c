// internal/workers/application/generate-application-form/handler.go
package generateapplicationform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "loan-form-workers/internal/common/errors"
	"loan-form-workers/internal/common/logger"
	"loan-form-workers/internal/common/metrics"
	"loan-form-workers/internal/common/validation"
	"loan-form-workers/internal/formfill/filler"
	"loan-form-workers/internal/formfill/formlock"
	"loan-form-workers/internal/formfill/formstore"
	"loan-form-workers/internal/formfill/layout"
	"loan-form-workers/internal/formfill/mapping"
	"loan-form-workers/internal/formfill/notify"
	"loan-form-workers/internal/formfill/report"
	"loan-form-workers/pkg/registry"
)

const (
	TaskType = "generate-application-form"

	outputSuffix = "_filled.pdf"
)

var (
	tracer = otel.Tracer("loan-form-workers/" + TaskType)

	applicationIDRe = regexp.MustCompile(applicationIDPattern)
)

type RecordLoader interface {
	LoadRecord(ctx context.Context, applicationID string) (map[string]interface{}, error)
}

type DocumentRecorder interface {
	Record(ctx context.Context, doc formstore.Document) error
}

type OutputLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, error)
	Release(ctx context.Context, key, token string) error
}

type FormFiller interface {
	Fill(ctx context.Context, templatePath string, m mapping.Mapping, outputPath string) ([]string, error)
}

type ReportIndexer interface {
	Index(ctx context.Context, r report.GenerationReport) error
}

type EventPublisher interface {
	FormGenerated(ctx context.Context, ev notify.FormGeneratedEvent) error
}

type DriftAlerter interface {
	Alert(ctx context.Context, r report.GenerationReport) error
}

// FormMetrics is satisfied by *observability.Observability.
type FormMetrics interface {
	RecordFormGenerated(ctx context.Context, template string, missing int)
	RecordJobProcessed(ctx context.Context, status string)
	RecordJobDuration(ctx context.Context, duration time.Duration, status string)
}

// Dependencies are the collaborators of the handler. Registry and Filler are
// required; Reports, Events, Alerts and Metrics are optional and their
// failures never fail the job.
type Dependencies struct {
	Registry  *registry.TemplateRegistry
	Fs        afero.Fs
	Filler    FormFiller
	Records   RecordLoader
	Documents DocumentRecorder
	Locker    OutputLocker
	Reports   ReportIndexer
	Events    EventPublisher
	Alerts    DriftAlerter
	Metrics   FormMetrics
}

type Handler struct {
	config       *Config
	deps         Dependencies
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger

	now   func() time.Time
	newID func() string
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		deps:         deps,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := ParseInput(job.Variables)
	var output *Output
	if err == nil {
		output, err = h.Execute(ctx, input)
	}

	status := "completed"
	if err != nil {
		status = "failed"
		h.failJob(client, job, err)
	} else {
		h.completeJob(client, job, output)
	}

	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordJobProcessed(ctx, status)
		h.deps.Metrics.RecordJobDuration(ctx, elapsed, status)
	}
}

// ParseInput decodes and validates job variables. Numbers in an inline
// record keep their literal form.
func ParseInput(variables string) (*Input, error) {
	var vars map[string]interface{}
	if err := decodeJSON(variables, &vars); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
	}

	res, err := validation.Validate(vars, GetInputSchema())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !res.Valid {
		return nil, apperrors.NewInvalidInputError(strings.Join(res.GetErrorMessages(), "; "))
	}

	var input Input
	if err := decodeJSON(variables, &input); err != nil {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
	}
	return &input, nil
}

func decodeJSON(s string, v interface{}) error {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	return dec.Decode(v)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (out *Output, err error) {
	ctx, span := tracer.Start(ctx, TaskType)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("applicationId", input.ApplicationID))

	if !applicationIDRe.MatchString(input.ApplicationID) {
		return nil, apperrors.NewInvalidInputError(fmt.Sprintf("applicationId %q must match %s", input.ApplicationID, applicationIDPattern))
	}

	record, err := h.resolveRecord(ctx, input)
	if err != nil {
		return nil, err
	}

	templatePath, tmpl, err := h.resolveTemplate(input.TemplateName)
	if err != nil {
		return nil, err
	}

	version := tmpl.LayoutVersion
	if version == "" {
		version = h.config.LayoutVersion
	}
	table, ok := layout.Lookup(version)
	if !ok {
		return nil, apperrors.NewTemplateNotFoundError(tmpl.Name).
			WithMetadata("layoutVersion", version)
	}
	span.SetAttributes(
		attribute.String("template", tmpl.Name),
		attribute.String("layoutVersion", version),
	)

	m := mapping.NewGenerator(table).Generate(record)

	required := tmpl.RequiredFields
	if len(required) == 0 {
		required = mapping.DefaultRequiredFields
	}
	missingRequired := mapping.MissingRequired(m, required)

	outputPath := filepath.Join(h.config.OutputDir, input.ApplicationID+outputSuffix)

	fillStart := time.Now()
	missing, err := h.fillLocked(ctx, templatePath, m, outputPath)
	if err != nil {
		return nil, err
	}
	fillDuration := time.Since(fillStart)
	metrics.FormFillDuration.WithLabelValues(tmpl.Name).Observe(fillDuration.Seconds())
	if len(missing) > 0 {
		metrics.FormMissingFields.WithLabelValues(tmpl.Name).Add(float64(len(missing)))
	}

	strict := h.config.Strict
	if input.Strict != nil {
		strict = *input.Strict
	}
	rejected := strict && len(missing) > 0

	generatedAt := h.now().UTC()
	summary := mapping.Summarize(m)
	documentID := ""
	if !rejected {
		documentID = h.newID()
	}

	rep := report.GenerationReport{
		ReportID:        h.newID(),
		ApplicationID:   input.ApplicationID,
		DocumentID:      documentID,
		TemplateName:    tmpl.Name,
		LayoutVersion:   version,
		PDFPath:         outputPath,
		MissingFields:   missing,
		MissingRequired: missingRequired,
		Summary:         summary,
		Strict:          strict,
		DurationMs:      fillDuration.Milliseconds(),
		GeneratedAt:     generatedAt.Format(time.RFC3339),
	}
	h.indexReport(ctx, rep)
	if len(missing) > 0 {
		h.alertDrift(ctx, rep)
	}

	if rejected {
		h.logger.Warn("strict mode rejected form", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"missing":       len(missing),
			"pdfPath":       outputPath,
		})
		return nil, apperrors.NewMissingRequiredFieldsError(missing).
			WithMetadata("pdfPath", outputPath).
			WithMetadata("missingRequired", missingRequired)
	}

	if h.deps.Documents != nil {
		err := h.deps.Documents.Record(ctx, formstore.Document{
			ID:            documentID,
			ApplicationID: input.ApplicationID,
			TemplateName:  tmpl.Name,
			LayoutVersion: version,
			FilePath:      outputPath,
			MissingFields: missing,
			FieldCount:    len(m),
			RequestedBy:   input.RequestedBy,
			CreatedAt:     generatedAt,
		})
		if err != nil {
			return nil, apperrors.NewDatabaseInsertFailedError(err)
		}
	}

	h.publish(ctx, notify.FormGeneratedEvent{
		ApplicationID: input.ApplicationID,
		DocumentID:    documentID,
		TemplateName:  tmpl.Name,
		PDFPath:       outputPath,
		MissingFields: missing,
		GeneratedAt:   rep.GeneratedAt,
	})

	metrics.FormsGenerated.WithLabelValues(tmpl.Name, version).Inc()
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordFormGenerated(ctx, tmpl.Name, len(missing))
	}

	h.logger.Info("form generated", map[string]interface{}{
		"applicationId":   input.ApplicationID,
		"documentId":      documentID,
		"template":        tmpl.Name,
		"fields":          len(m),
		"missing":         len(missing),
		"missingRequired": len(missingRequired),
		"pdfPath":         outputPath,
	})

	return &Output{
		PDFPath:         outputPath,
		DocumentID:      documentID,
		TemplateName:    tmpl.Name,
		LayoutVersion:   version,
		MissingFields:   missing,
		MissingRequired: missingRequired,
		Summary:         summary,
		GeneratedAt:     rep.GeneratedAt,
	}, nil
}

func (h *Handler) resolveRecord(ctx context.Context, input *Input) (map[string]interface{}, error) {
	if input.Record != nil {
		return input.Record, nil
	}
	if h.deps.Records == nil {
		return nil, apperrors.NewInvalidInputError("record not supplied and no application store configured")
	}

	record, err := h.deps.Records.LoadRecord(ctx, input.ApplicationID)
	if err != nil {
		if errors.Is(err, formstore.ErrApplicationNotFound) {
			return nil, apperrors.NewApplicationNotFoundError(input.ApplicationID).WithCause(err)
		}
		return nil, apperrors.NewDatabaseConnectionFailedError(err)
	}
	return record, nil
}

func (h *Handler) resolveTemplate(name string) (string, *registry.Template, error) {
	if h.deps.Registry == nil {
		return "", nil, apperrors.NewTemplateNotFoundError(name).WithCause(registry.ErrTemplateNotFound)
	}
	path, tmpl, err := h.deps.Registry.Resolve(h.deps.Fs, name, h.config.TemplateDir)
	if err != nil {
		if name == "" {
			name = h.deps.Registry.DefaultTemplate
		}
		return "", nil, apperrors.NewTemplateNotFoundError(name).WithCause(err)
	}
	return path, tmpl, nil
}

// fillLocked holds the output lock for the duration of the fill so two jobs
// for the same application never interleave writes.
func (h *Handler) fillLocked(ctx context.Context, templatePath string, m mapping.Mapping, outputPath string) ([]string, error) {
	if h.deps.Locker != nil {
		token, err := h.deps.Locker.Acquire(ctx, outputPath, h.config.LockTTL)
		if err != nil {
			if errors.Is(err, formlock.ErrLocked) {
				return nil, apperrors.NewOutputLockedError(outputPath).WithCause(err)
			}
			return nil, apperrors.NewFormGenerationFailedError(err)
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := h.deps.Locker.Release(releaseCtx, outputPath, token); err != nil {
				h.logger.Warn("failed to release output lock", map[string]interface{}{
					"path":  outputPath,
					"error": err.Error(),
				})
			}
		}()
	}

	missing, err := h.deps.Filler.Fill(ctx, templatePath, m, outputPath)
	if err != nil {
		if errors.Is(err, filler.ErrTemplateNotFound) {
			return nil, apperrors.NewTemplateNotFoundError(templatePath).WithCause(err)
		}
		return nil, apperrors.NewFormGenerationFailedError(err)
	}
	return missing, nil
}

func (h *Handler) indexReport(ctx context.Context, rep report.GenerationReport) {
	if h.deps.Reports == nil {
		return
	}
	if err := h.deps.Reports.Index(ctx, rep); err != nil {
		h.logger.Warn("failed to index generation report", map[string]interface{}{
			"applicationId": rep.ApplicationID,
			"error":         err.Error(),
		})
	}
}

func (h *Handler) alertDrift(ctx context.Context, rep report.GenerationReport) {
	if h.deps.Alerts == nil {
		return
	}
	if err := h.deps.Alerts.Alert(ctx, rep); err != nil {
		h.logger.Warn("failed to send drift alert", map[string]interface{}{
			"applicationId": rep.ApplicationID,
			"error":         err.Error(),
		})
	}
}

func (h *Handler) publish(ctx context.Context, ev notify.FormGeneratedEvent) {
	if h.deps.Events == nil {
		return
	}
	if err := h.deps.Events.FormGenerated(ctx, ev); err != nil {
		h.logger.Warn("failed to publish form event", map[string]interface{}{
			"applicationId": ev.ApplicationID,
			"error":         err.Error(),
		})
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey":  job.Key,
		"pdfPath": output.PDFPath,
	})
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	code := string(apperrors.ErrCodeInternal)
	var stdErr *apperrors.StandardError
	if errors.As(err, &stdErr) {
		code = string(stdErr.Code)
	}
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
