// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

var ErrTemplateNotFound = errors.New("TEMPLATE_NOT_FOUND")

// LoadRegistry reads the registry JSON at path from fs.
func LoadRegistry(fs afero.Fs, path string) (*TemplateRegistry, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var reg TemplateRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// SaveRegistry writes reg as indented JSON, creating parent directories.
func SaveRegistry(fs afero.Fs, reg *TemplateRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Lookup finds a template by name. An empty name selects the default.
func (r *TemplateRegistry) Lookup(name string) (*Template, bool) {
	if name == "" {
		name = r.DefaultTemplate
	}
	for i := range r.Templates {
		if r.Templates[i].Name == name {
			return &r.Templates[i], true
		}
	}
	return nil, false
}

// Resolve returns the on-disk path of the named template. The registered
// file is tried first, then <name>.pdf, both relative to templateDir.
func (r *TemplateRegistry) Resolve(fs afero.Fs, name, templateDir string) (string, *Template, error) {
	tmpl, ok := r.Lookup(name)
	if !ok {
		if name == "" {
			name = r.DefaultTemplate
		}
		return "", nil, fmt.Errorf("%w: %q is not registered", ErrTemplateNotFound, name)
	}

	var candidates []string
	if tmpl.File != "" {
		if filepath.IsAbs(tmpl.File) {
			candidates = append(candidates, tmpl.File)
		} else {
			candidates = append(candidates, filepath.Join(templateDir, tmpl.File))
		}
	}
	candidates = append(candidates, filepath.Join(templateDir, tmpl.Name+".pdf"))

	for _, c := range candidates {
		info, err := fs.Stat(c)
		if err == nil && !info.IsDir() {
			abs, absErr := filepath.Abs(c)
			if absErr != nil {
				abs = c
			}
			return abs, tmpl, nil
		}
	}
	return "", tmpl, fmt.Errorf("%w: %q not found in %s", ErrTemplateNotFound, tmpl.Name, templateDir)
}

// Validate checks names are present and unique, the default is registered
// and every template declares a known layout version.
func (r *TemplateRegistry) Validate(knownLayout func(string) bool) error {
	if len(r.Templates) == 0 {
		return fmt.Errorf("registry contains no templates")
	}

	names := make(map[string]bool)
	for _, t := range r.Templates {
		if t.Name == "" {
			return fmt.Errorf("template missing required field: Name")
		}
		if names[t.Name] {
			return fmt.Errorf("duplicate template name: %s", t.Name)
		}
		names[t.Name] = true

		if t.LayoutVersion == "" {
			return fmt.Errorf("template %s missing required field: LayoutVersion", t.Name)
		}
		if knownLayout != nil && !knownLayout(t.LayoutVersion) {
			return fmt.Errorf("template %s uses unknown layout version %s", t.Name, t.LayoutVersion)
		}
	}

	if r.DefaultTemplate != "" && !names[r.DefaultTemplate] {
		return fmt.Errorf("default template %s is not registered", r.DefaultTemplate)
	}
	return nil
}
