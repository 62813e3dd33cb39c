package filler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/form"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"loan-form-workers/internal/formfill/layout"
)

// pdfDocument buffers widget values and applies them in one pdfcpu form
// fill on Save.
type pdfDocument struct {
	raw     []byte
	conf    *model.Configuration
	fields  []Field
	widgets map[string]pdfWidget

	mu     sync.Mutex
	values map[string]interface{}
}

type pdfWidget struct {
	typ    form.FieldType
	locked bool
}

// pdfcpu form fill payload. Every entry carries the widget's current lock
// state because pdfcpu unlocks any widget filled without it.
type formFill struct {
	Forms []formGroup `json:"forms"`
}

type formGroup struct {
	TextFields []textValue  `json:"textfield,omitempty"`
	DateFields []textValue  `json:"datefield,omitempty"`
	CheckBoxes []checkValue `json:"checkbox,omitempty"`
}

type textValue struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Locked bool   `json:"locked"`
}

type checkValue struct {
	Name   string `json:"name"`
	Value  bool   `json:"value"`
	Locked bool   `json:"locked"`
}

// OpenPDF reads an AcroForm PDF template.
func OpenPDF(rs io.ReadSeeker) (Document, error) {
	raw, err := io.ReadAll(rs)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ff, err := api.FormFields(bytes.NewReader(raw), conf)
	if err != nil {
		return nil, fmt.Errorf("list form fields: %w", err)
	}
	d := &pdfDocument{
		raw:     raw,
		conf:    conf,
		widgets: make(map[string]pdfWidget, len(ff)),
		values:  make(map[string]interface{}),
	}
	for _, f := range ff {
		d.fields = append(d.fields, newField(f.Name, widgetKind(f.Typ)))
		d.widgets[f.Name] = pdfWidget{typ: f.Typ, locked: f.Locked}
	}
	return d, nil
}

// widgetKind maps pdfcpu field types onto layout kinds. Date fields take
// text values.
func widgetKind(t form.FieldType) layout.Kind {
	switch t {
	case form.FTText, form.FTDate:
		return layout.Text
	case form.FTCheckBox:
		return layout.Checkbox
	}
	return ""
}

func (d *pdfDocument) ListFields() []Field {
	return append([]Field(nil), d.fields...)
}

func (d *pdfDocument) SetField(name string, value interface{}) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	w, ok := d.widgets[name]
	if !ok {
		return fmt.Errorf("widget %q is not fillable", name)
	}
	switch widgetKind(w.typ) {
	case layout.Text:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("text widget %q needs a string, got %T", name, value)
		}
	case layout.Checkbox:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("checkbox %q needs a bool, got %T", name, value)
		}
	default:
		return fmt.Errorf("widget %q is not fillable", name)
	}
	d.values[name] = value
	return nil
}

func (d *pdfDocument) Save(w io.Writer) error {
	d.mu.Lock()
	group := formGroup{}
	for name, v := range d.values {
		wd := d.widgets[name]
		switch wd.typ {
		case form.FTText:
			group.TextFields = append(group.TextFields, textValue{Name: name, Value: v.(string), Locked: wd.locked})
		case form.FTDate:
			group.DateFields = append(group.DateFields, textValue{Name: name, Value: v.(string), Locked: wd.locked})
		case form.FTCheckBox:
			group.CheckBoxes = append(group.CheckBoxes, checkValue{Name: name, Value: v.(bool), Locked: wd.locked})
		}
	}
	d.mu.Unlock()

	if len(group.TextFields)+len(group.DateFields)+len(group.CheckBoxes) == 0 {
		_, err := w.Write(d.raw)
		return err
	}

	sort.Slice(group.TextFields, func(i, j int) bool { return group.TextFields[i].Name < group.TextFields[j].Name })
	sort.Slice(group.DateFields, func(i, j int) bool { return group.DateFields[i].Name < group.DateFields[j].Name })
	sort.Slice(group.CheckBoxes, func(i, j int) bool { return group.CheckBoxes[i].Name < group.CheckBoxes[j].Name })

	payload, err := json.Marshal(formFill{Forms: []formGroup{group}})
	if err != nil {
		return err
	}

	var out bytes.Buffer
	err = api.FillForm(bytes.NewReader(d.raw), bytes.NewReader(payload), &out, d.conf)
	switch {
	case errors.Is(err, api.ErrNoFormFieldsAffected):
		// every value already matched the template
		_, err = w.Write(d.raw)
		return err
	case err != nil:
		return fmt.Errorf("fill form: %w", err)
	}
	_, err = w.Write(out.Bytes())
	return err
}
