// internal/workers/application/generate-application-form/validation.go
package generateapplicationform

import "loan-form-workers/internal/common/validation"

// applicationIDPattern keeps the id safe to use as an output file name.
const applicationIDPattern = `^[A-Za-z0-9._-]+$`

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicationId"},
		Properties: map[string]validation.Property{
			"applicationId": {
				Type:        "string",
				Description: "Application whose form is generated",
				Pattern:     applicationIDPattern,
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(128),
			},
			"record": {
				Type:        []string{"object", "null"},
				Description: "Inline application record; loaded from the database when absent",
			},
			"templateName": {
				Type:        "string",
				Description: "Registered template name; the registry default when empty",
				MaxLength:   validation.IntPtr(128),
			},
			"strict": {
				Type:        "boolean",
				Description: "Fail the job when mapped fields are left unfilled",
			},
			"requestedBy": {
				Type:        "string",
				Description: "User or process that asked for the form",
				MaxLength:   validation.IntPtr(255),
			},
		},
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"pdfPath", "missingFields", "generatedAt"},
		Properties: map[string]validation.Property{
			"pdfPath":         {Type: "string"},
			"documentId":      {Type: "string"},
			"templateName":    {Type: "string"},
			"layoutVersion":   {Type: "string"},
			"missingFields":   {Type: "array", Items: &validation.Property{Type: "string"}},
			"missingRequired": {Type: "array", Items: &validation.Property{Type: "string"}},
			"summary":         {Type: "object"},
			"generatedAt":     {Type: "string"},
		},
		AdditionalProperties: validation.BoolPtr(false),
	}
}
