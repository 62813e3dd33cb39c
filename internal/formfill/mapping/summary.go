package mapping

import (
	"loan-form-workers/internal/formfill/layout"
)

const sampleSize = 5

// SampleField is one entry of a summary sample.
type SampleField struct {
	ID    string      `json:"id"`
	Value interface{} `json:"value"`
}

// Summary describes a mapping for diagnostics.
type Summary struct {
	TotalFields       int           `json:"totalFields"`
	TextFields        int           `json:"textFields"`
	CheckboxFields    int           `json:"checkboxFields"`
	FilledTextFields  int           `json:"filledTextFields"`
	CheckedCheckboxes int           `json:"checkedCheckboxes"`
	TextSample        []SampleField `json:"textSample"`
	CheckboxSample    []SampleField `json:"checkboxSample"`
}

// Summarize counts the fields of m by kind. The samples hold the lowest
// numbered fields of each kind.
func Summarize(m Mapping) Summary {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	layout.SortFieldIDs(ids)

	s := Summary{
		TotalFields:    len(m),
		TextSample:     []SampleField{},
		CheckboxSample: []SampleField{},
	}
	for _, id := range ids {
		kind, _, ok := layout.ParseFieldID(id)
		if !ok {
			continue
		}
		v := m[id]
		switch kind {
		case layout.Text:
			s.TextFields++
			if txt, isString := v.(string); isString && txt != "" {
				s.FilledTextFields++
			}
			if len(s.TextSample) < sampleSize {
				s.TextSample = append(s.TextSample, SampleField{ID: id, Value: v})
			}
		case layout.Checkbox:
			s.CheckboxFields++
			if on, isBool := v.(bool); isBool && on {
				s.CheckedCheckboxes++
			}
			if len(s.CheckboxSample) < sampleSize {
				s.CheckboxSample = append(s.CheckboxSample, SampleField{ID: id, Value: v})
			}
		}
	}
	return s
}
