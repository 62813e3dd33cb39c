package filler

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"loan-form-workers/internal/formfill/layout"
)

// MemoryDocument is an in-memory Document. Widget kinds are inferred from
// their names. Save writes the current values as JSON.
type MemoryDocument struct {
	mu     sync.Mutex
	fields []Field
	values map[string]interface{}

	// SaveErr, when set, is returned by Save after writing a partial body.
	SaveErr error
}

func NewMemoryDocument(widgets ...string) *MemoryDocument {
	d := &MemoryDocument{values: make(map[string]interface{})}
	for _, name := range widgets {
		kind, _, _ := layout.ParseFieldID(layout.NormalizeWidgetName(name))
		d.fields = append(d.fields, newField(name, kind))
	}
	return d
}

func (d *MemoryDocument) ListFields() []Field {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Field(nil), d.fields...)
}

func (d *MemoryDocument) SetField(name string, value interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.fields {
		if f.Name == name {
			d.values[name] = value
			return nil
		}
	}
	return fmt.Errorf("no widget named %q", name)
}

// Value returns what was set on the named widget.
func (d *MemoryDocument) Value(name string) (interface{}, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.values[name]
	return v, ok
}

func (d *MemoryDocument) Save(w io.Writer) error {
	d.mu.Lock()
	data, err := json.Marshal(d.values)
	d.mu.Unlock()
	if err != nil {
		return err
	}
	if d.SaveErr != nil {
		_, _ = w.Write(data[:len(data)/2])
		return d.SaveErr
	}
	_, err = w.Write(data)
	return err
}

// MemoryOpener always yields doc, ignoring the template bytes.
func MemoryOpener(doc *MemoryDocument) Opener {
	return func(io.ReadSeeker) (Document, error) {
		return doc, nil
	}
}
