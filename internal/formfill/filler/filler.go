// internal/formfill/filler/filler.go
package filler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"loan-form-workers/internal/common/logger"
	"loan-form-workers/internal/formfill/layout"
	"loan-form-workers/internal/formfill/mapping"
)

var ErrTemplateNotFound = errors.New("TEMPLATE_NOT_FOUND")

var tracer = otel.Tracer("loan-form-workers/filler")

// Filler writes mappings into form templates.
type Filler struct {
	fs     afero.Fs
	open   Opener
	logger logger.Logger
}

type Option func(*Filler)

func WithFs(fs afero.Fs) Option {
	return func(f *Filler) { f.fs = fs }
}

func WithOpener(open Opener) Option {
	return func(f *Filler) { f.open = open }
}

func WithLogger(log logger.Logger) Option {
	return func(f *Filler) { f.logger = log }
}

// New returns a Filler over the OS filesystem and PDF templates.
func New(opts ...Option) *Filler {
	f := &Filler{
		fs:     afero.NewOsFs(),
		open:   OpenPDF,
		logger: logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fill writes m into the template at templatePath and saves the result at
// outputPath. It returns the mapping keys no fillable widget accepted, text
// ids first then checkbox ids, each by number.
//
// The output is staged next to outputPath and renamed into place, so the
// published path never holds a partial document.
func (f *Filler) Fill(ctx context.Context, templatePath string, m mapping.Mapping, outputPath string) (missing []string, err error) {
	ctx, span := tracer.Start(ctx, "filler.Fill")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("template", templatePath),
		attribute.Int("fields", len(m)),
	)

	start := time.Now()

	raw, err := f.readTemplate(templatePath)
	if err != nil {
		return nil, err
	}

	doc, err := f.open(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", templatePath, err)
	}

	missing = Apply(doc, m)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.save(doc, outputPath); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("missing", len(missing)))
	f.logger.Debug("Form filled", map[string]interface{}{
		"template": templatePath,
		"output":   outputPath,
		"fields":   len(m),
		"missing":  len(missing),
		"duration": time.Since(start).String(),
	})
	return missing, nil
}

func (f *Filler) readTemplate(path string) ([]byte, error) {
	info, err := f.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		return nil, fmt.Errorf("stat template %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrTemplateNotFound, path)
	}
	raw, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	return raw, nil
}

// Apply sets every mapping value on each fillable widget sharing its id
// and returns the ids that no widget accepted, sorted.
func Apply(doc Document, m mapping.Mapping) []string {
	widgets := make(map[string][]Field)
	for _, fld := range doc.ListFields() {
		widgets[fld.ID] = append(widgets[fld.ID], fld)
	}

	missing := []string{}
	for id, v := range m {
		filled := false
		for _, w := range widgets[id] {
			if !w.Kind.Fillable() {
				continue
			}
			if err := doc.SetField(w.Name, coerce(w.Kind, v)); err == nil {
				filled = true
			}
		}
		if !filled {
			missing = append(missing, id)
		}
	}
	layout.SortFieldIDs(missing)
	return missing
}

// coerce converts a mapping value to what a widget of kind accepts.
func coerce(kind layout.Kind, v interface{}) interface{} {
	if kind == layout.Checkbox {
		return mapping.Truthy(v)
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "Yes"
		}
		return ""
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func (f *Filler) save(doc Document, outputPath string) (err error) {
	dir := filepath.Dir(outputPath)
	if err := f.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(f.fs, dir, "."+filepath.Base(outputPath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("stage output: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			if rmErr := f.fs.Remove(tmpName); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				f.logger.Warn("Failed to remove staged output", map[string]interface{}{
					"path":  tmpName,
					"error": rmErr.Error(),
				})
			}
		}
	}()

	if err = doc.Save(tmp); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err = f.fs.Rename(tmpName, outputPath); err != nil {
		return fmt.Errorf("publish output %s: %w", outputPath, err)
	}
	return nil
}
