// internal/workers/application/generate-application-form/models.go
package generateapplicationform

import "loan-form-workers/internal/formfill/mapping"

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	Record        map[string]interface{} `json:"record,omitempty"`
	TemplateName  string                 `json:"templateName,omitempty"`
	Strict        *bool                  `json:"strict,omitempty"`
	RequestedBy   string                 `json:"requestedBy,omitempty"`
}

type Output struct {
	PDFPath         string          `json:"pdfPath"`
	DocumentID      string          `json:"documentId"`
	TemplateName    string          `json:"templateName"`
	LayoutVersion   string          `json:"layoutVersion"`
	MissingFields   []string        `json:"missingFields"`
	MissingRequired []string        `json:"missingRequired"`
	Summary         mapping.Summary `json:"summary"`
	GeneratedAt     string          `json:"generatedAt"` // ISO 8601
}
