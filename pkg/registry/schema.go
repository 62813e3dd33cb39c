// pkg/registry/schema.go
package registry

// TemplateRegistry lists the form templates a deployment can fill.
type TemplateRegistry struct {
	Version         string     `json:"version"`
	LastUpdated     string     `json:"lastUpdated"`
	DefaultTemplate string     `json:"defaultTemplate"`
	Templates       []Template `json:"templates"`
}

type Template struct {
	Name        string `json:"name"`
	File        string `json:"file"`
	Description string `json:"description"`
	// LayoutVersion selects the field layout the template was drawn for.
	LayoutVersion  string   `json:"layoutVersion"`
	RequiredFields []string `json:"requiredFields,omitempty"`
	Tags           []string `json:"tags,omitempty"`
}
