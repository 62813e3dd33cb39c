package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() JSONSchema {
	return JSONSchema{
		Type:     "object",
		Required: []string{"applicationId"},
		Properties: map[string]Property{
			"applicationId": {Type: "string", Pattern: `^[A-Za-z0-9._-]+$`, MinLength: IntPtr(1)},
			"strict":        {Type: "boolean"},
			"record":        {Type: []string{"object", "null"}},
			"tags":          {Type: "array", Items: &Property{Type: "string"}},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		input      map[string]interface{}
		wantValid  bool
		wantFields []string
	}{
		{
			name:      "valid",
			input:     map[string]interface{}{"applicationId": "APP-1", "strict": true, "record": map[string]interface{}{}},
			wantValid: true,
		},
		{
			name:      "extra properties allowed",
			input:     map[string]interface{}{"applicationId": "APP-1", "processVar": 1},
			wantValid: true,
		},
		{
			name:      "null record",
			input:     map[string]interface{}{"applicationId": "APP-1", "record": nil},
			wantValid: true,
		},
		{
			name:       "missing id",
			input:      map[string]interface{}{"strict": false},
			wantFields: []string{"applicationId"},
		},
		{
			name:       "path traversal id",
			input:      map[string]interface{}{"applicationId": "../etc/passwd"},
			wantFields: []string{"applicationId"},
		},
		{
			name:       "wrong types",
			input:      map[string]interface{}{"applicationId": "APP-1", "strict": "yes", "tags": []interface{}{1}},
			wantFields: []string{"strict", "tags.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Validate(tt.input, testSchema())
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid, res.GetErrorMessages())
			for _, f := range tt.wantFields {
				assert.True(t, res.HasErrors(f), "expected error on %s, got %v", f, res.GetErrorMessages())
			}
		})
	}
}

func TestValidate_JSONNumber(t *testing.T) {
	schema := JSONSchema{
		Type:       "object",
		Properties: map[string]Property{"amount": {Type: "number"}},
	}
	res, err := Validate(map[string]interface{}{"amount": json.Number("12.50")}, schema)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidate_ClosedSchema(t *testing.T) {
	schema := testSchema()
	schema.AdditionalProperties = BoolPtr(false)

	res, err := Validate(map[string]interface{}{"applicationId": "APP-1", "other": 1}, schema)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "ADDITIONAL_PROPERTY_NOT_ALLOWED", res.Errors[0].Code)
}
