package filler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/form"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-form-workers/internal/common/logger"
	"loan-form-workers/internal/formfill/layout"
	"loan-form-workers/internal/formfill/mapping"
)

// ==========================
// Test Helper Functions
// ==========================

const (
	templatePath = "/templates/loan_application.pdf"
	outputPath   = "/out/APP-1_filled.pdf"
)

func newTestFiller(t *testing.T, doc *MemoryDocument) (*Filler, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, templatePath, []byte("%PDF-1.7 template"), 0o644))
	f := New(
		WithFs(fs),
		WithOpener(MemoryOpener(doc)),
		WithLogger(logger.NewTestLogger(t)),
	)
	return f, fs
}

func dirEntries(t *testing.T, fs afero.Fs, dir string) []string {
	t.Helper()
	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	return names
}

// ==========================
// Fill
// ==========================

func TestFill_SetsMatchingWidgets(t *testing.T) {
	doc := NewMemoryDocument("Text1", "Text297", "Check Box20", "Check Box21")
	f, fs := newTestFiller(t, doc)

	m := mapping.Mapping{
		"text1":       "Acme Pty Ltd",
		"text297":     "100,000.00",
		"checkbox20":  true,
		"checkbox21":  false,
		"text999":     "no widget",
		"checkbox500": true,
		"text45":      "no widget either",
	}

	missing, err := f.Fill(context.Background(), templatePath, m, outputPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"text45", "text999", "checkbox500"}, missing)

	v, ok := doc.Value("Text1")
	assert.True(t, ok)
	assert.Equal(t, "Acme Pty Ltd", v)
	v, _ = doc.Value("Check Box20")
	assert.Equal(t, true, v)
	v, _ = doc.Value("Check Box21")
	assert.Equal(t, false, v)

	raw, err := afero.ReadFile(fs, outputPath)
	require.NoError(t, err)
	var saved map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Equal(t, "100,000.00", saved["Text297"])

	assert.Equal(t, []string{"APP-1_filled.pdf"}, dirEntries(t, fs, "/out"))
}

func TestFill_TemplateNotFound(t *testing.T) {
	f, fs := newTestFiller(t, NewMemoryDocument("Text1"))

	missing, err := f.Fill(context.Background(), "/templates/absent.pdf", mapping.Mapping{"text1": "x"}, outputPath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
	assert.Nil(t, missing)

	exists, _ := afero.Exists(fs, outputPath)
	assert.False(t, exists)
	assert.Empty(t, dirEntries(t, fs, "/out"))
}

func TestFill_TemplateIsDirectory(t *testing.T) {
	f, _ := newTestFiller(t, NewMemoryDocument())

	_, err := f.Fill(context.Background(), "/templates", mapping.Mapping{}, outputPath)
	assert.True(t, errors.Is(err, ErrTemplateNotFound))
}

func TestFill_EmptyMappingStillSaves(t *testing.T) {
	f, fs := newTestFiller(t, NewMemoryDocument("Text1"))

	missing, err := f.Fill(context.Background(), templatePath, mapping.Mapping{}, outputPath)
	require.NoError(t, err)
	assert.Empty(t, missing)

	exists, err := afero.Exists(fs, outputPath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestFill_SaveFailureLeavesNoOutput(t *testing.T) {
	doc := NewMemoryDocument("Text1")
	doc.SaveErr = errors.New("disk full")
	f, fs := newTestFiller(t, doc)
	require.NoError(t, afero.WriteFile(fs, outputPath, []byte("previous"), 0o644))

	_, err := f.Fill(context.Background(), templatePath, mapping.Mapping{"text1": "x"}, outputPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, errors.Is(err, ErrTemplateNotFound))

	raw, err := afero.ReadFile(fs, outputPath)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(raw))
	assert.Equal(t, []string{"APP-1_filled.pdf"}, dirEntries(t, fs, "/out"))
}

func TestFill_ReplacesExistingOutput(t *testing.T) {
	f, fs := newTestFiller(t, NewMemoryDocument("Text1"))
	require.NoError(t, afero.WriteFile(fs, outputPath, []byte("previous"), 0o644))

	_, err := f.Fill(context.Background(), templatePath, mapping.Mapping{"text1": "new"}, outputPath)
	require.NoError(t, err)

	raw, err := afero.ReadFile(fs, outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "new")
}

func TestFill_OpenError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, templatePath, []byte("broken"), 0o644))
	f := New(WithFs(fs), WithOpener(func(io.ReadSeeker) (Document, error) {
		return nil, errors.New("not a form")
	}))

	_, err := f.Fill(context.Background(), templatePath, mapping.Mapping{}, outputPath)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTemplateNotFound))
	exists, _ := afero.Exists(fs, outputPath)
	assert.False(t, exists)
}

func TestFill_CanceledContext(t *testing.T) {
	f, fs := newTestFiller(t, NewMemoryDocument("Text1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fill(ctx, templatePath, mapping.Mapping{"text1": "x"}, outputPath)
	assert.ErrorIs(t, err, context.Canceled)
	exists, _ := afero.Exists(fs, outputPath)
	assert.False(t, exists)
}

// ==========================
// Apply
// ==========================

func TestApply_CoercesToWidgetKind(t *testing.T) {
	doc := NewMemoryDocument("Text1", "Check Box2", "Check Box3")

	missing := Apply(doc, mapping.Mapping{
		"text1":     true,
		"checkbox2": "Yes",
		"checkbox3": "",
	})
	assert.Empty(t, missing)

	v, _ := doc.Value("Text1")
	assert.Equal(t, "Yes", v)
	v, _ = doc.Value("Check Box2")
	assert.Equal(t, true, v)
	v, _ = doc.Value("Check Box3")
	assert.Equal(t, false, v)
}

func TestApply_UnfillableWidgetIsMissing(t *testing.T) {
	doc := NewMemoryDocument("Text1")
	doc.fields = append(doc.fields, Field{Name: "Text5", ID: "text5"})

	missing := Apply(doc, mapping.Mapping{"text1": "a", "text5": "b"})
	assert.Equal(t, []string{"text5"}, missing)
}

func TestApply_FillsEveryWidgetSharingAnID(t *testing.T) {
	doc := NewMemoryDocument("Text12", "form1.Text12", "Check Box3")

	missing := Apply(doc, mapping.Mapping{"text12": "a", "checkbox3": true})
	assert.Empty(t, missing)
	for _, name := range []string{"Text12", "form1.Text12"} {
		v, ok := doc.Value(name)
		assert.True(t, ok, name)
		assert.Equal(t, "a", v, name)
	}
}

func TestApply_IDMissingOnlyWhenNoWidgetAccepts(t *testing.T) {
	doc := NewMemoryDocument("form1.Text7")
	doc.fields = append(doc.fields, Field{Name: "Text7", ID: "text7"})

	assert.Empty(t, Apply(doc, mapping.Mapping{"text7": "x"}))
	_, ok := doc.Value("Text7")
	assert.False(t, ok)
	v, _ := doc.Value("form1.Text7")
	assert.Equal(t, "x", v)
}

func TestApply_MatchesNormalisedNames(t *testing.T) {
	doc := NewMemoryDocument("form1.Text12", "Check Box 20")

	missing := Apply(doc, mapping.Mapping{"text12": "a", "checkbox20": true})
	assert.Empty(t, missing)
	v, _ := doc.Value("form1.Text12")
	assert.Equal(t, "a", v)
}

// ==========================
// PDF document
// ==========================

func TestOpenPDF_RejectsNonPDF(t *testing.T) {
	_, err := OpenPDF(strings.NewReader("definitely not a pdf"))
	assert.Error(t, err)
}

func TestWidgetKind(t *testing.T) {
	assert.Equal(t, layout.Text, widgetKind(form.FTText))
	assert.Equal(t, layout.Text, widgetKind(form.FTDate))
	assert.Equal(t, layout.Checkbox, widgetKind(form.FTCheckBox))
	assert.Equal(t, layout.Kind(""), widgetKind(form.FTRadioButtonGroup))
}

func TestPDFDocument_SetFieldChecksKind(t *testing.T) {
	d := &pdfDocument{
		widgets: map[string]pdfWidget{
			"Text1":      {typ: form.FTText},
			"Text9":      {typ: form.FTDate},
			"Check Box2": {typ: form.FTCheckBox},
			"Radio3":     {typ: form.FTRadioButtonGroup},
		},
		values: map[string]interface{}{},
	}
	assert.NoError(t, d.SetField("Text1", "a"))
	assert.NoError(t, d.SetField("Text9", "01.02.2024"))
	assert.NoError(t, d.SetField("Check Box2", true))
	assert.Error(t, d.SetField("Text1", true))
	assert.Error(t, d.SetField("Text9", true))
	assert.Error(t, d.SetField("Check Box2", "Yes"))
	assert.Error(t, d.SetField("Radio3", "a"))
	assert.Error(t, d.SetField("Unknown", "a"))
}

func TestPDFDocument_SaveWithoutValuesCopiesTemplate(t *testing.T) {
	d := &pdfDocument{raw: []byte("%PDF-1.7"), values: map[string]interface{}{}}
	var sb strings.Builder
	require.NoError(t, d.Save(&sb))
	assert.Equal(t, "%PDF-1.7", sb.String())
}

// acroFormTemplate renders a one-page AcroForm with a text field, a locked
// text field, a date field and a checkbox.
func acroFormTemplate(t *testing.T) []byte {
	t.Helper()
	const layoutJSON = `{
		"paper": "A4P",
		"origin": "LowerLeft",
		"fonts": {
			"input": {"name": "Helvetica", "size": 10}
		},
		"pages": {
			"1": {
				"content": {
					"textfield": [
						{"id": "Text1", "pos": [100, 700], "width": 150},
						{"id": "Text2", "pos": [100, 670], "width": 150, "value": "fixed", "locked": true}
					],
					"datefield": [
						{"id": "Text299", "pos": [100, 640], "width": 100, "format": "dd.mm.yyyy"}
					],
					"checkbox": [
						{"id": "Check Box20", "pos": [100, 610], "width": 12}
					]
				}
			}
		}
	}`
	var buf bytes.Buffer
	require.NoError(t, api.Create(nil, strings.NewReader(layoutJSON), &buf, model.NewDefaultConfiguration()))
	return buf.Bytes()
}

func readBackFields(t *testing.T, pdf []byte) map[string]form.Field {
	t.Helper()
	ff, err := api.FormFields(bytes.NewReader(pdf), model.NewDefaultConfiguration())
	require.NoError(t, err)
	out := make(map[string]form.Field, len(ff))
	for _, f := range ff {
		out[f.Name] = f
	}
	return out
}

func TestPDFDocument_RoundTrip(t *testing.T) {
	doc, err := OpenPDF(bytes.NewReader(acroFormTemplate(t)))
	require.NoError(t, err)

	missing := Apply(doc, mapping.Mapping{
		"text1":      "Jane Doe",
		"text2":      "changed",
		"text299":    "21.05.1990",
		"checkbox20": true,
	})
	assert.Empty(t, missing)

	var out bytes.Buffer
	require.NoError(t, doc.Save(&out))

	fields := readBackFields(t, out.Bytes())
	assert.Equal(t, "Jane Doe", fields["Text1"].V)
	assert.Equal(t, "changed", fields["Text2"].V)
	assert.Equal(t, form.FTDate, fields["Text299"].Typ)
	assert.Equal(t, "21.05.1990", fields["Text299"].V)
	assert.Equal(t, "Yes", fields["Check Box20"].V)
}

func TestPDFDocument_FillKeepsLockedWidgetsLocked(t *testing.T) {
	tmpl := acroFormTemplate(t)
	require.True(t, readBackFields(t, tmpl)["Text2"].Locked)

	doc, err := OpenPDF(bytes.NewReader(tmpl))
	require.NoError(t, err)
	assert.Empty(t, Apply(doc, mapping.Mapping{"text1": "a", "text2": "b"}))

	var out bytes.Buffer
	require.NoError(t, doc.Save(&out))

	fields := readBackFields(t, out.Bytes())
	assert.True(t, fields["Text2"].Locked)
	assert.False(t, fields["Text1"].Locked)
	assert.Equal(t, "b", fields["Text2"].V)
}

func TestPDFDocument_UnchangedValuesCopyTemplate(t *testing.T) {
	tmpl := acroFormTemplate(t)
	doc, err := OpenPDF(bytes.NewReader(tmpl))
	require.NoError(t, err)
	assert.Empty(t, Apply(doc, mapping.Mapping{"text2": "fixed"}))

	var out bytes.Buffer
	require.NoError(t, doc.Save(&out))
	assert.Equal(t, tmpl, out.Bytes())
}
