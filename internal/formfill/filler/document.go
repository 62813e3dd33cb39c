// internal/formfill/filler/document.go
package filler

import (
	"io"

	"loan-form-workers/internal/formfill/layout"
)

// Field is one form widget of a template.
type Field struct {
	// Name is the widget name as stored in the template, e.g. "Check Box20".
	Name string
	// ID is the normalised field id, e.g. "checkbox20".
	ID   string
	Kind layout.Kind
}

// Document is the capability set the filler needs from a form template.
type Document interface {
	ListFields() []Field
	SetField(name string, value interface{}) error
	Save(w io.Writer) error
}

// Opener reads a template into a Document.
type Opener func(r io.ReadSeeker) (Document, error)

func newField(name string, kind layout.Kind) Field {
	return Field{Name: name, ID: layout.NormalizeWidgetName(name), Kind: kind}
}
