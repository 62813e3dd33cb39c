// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"

	"loan-form-workers/internal/formfill/layout"
	"loan-form-workers/pkg/registry"
)

var (
	registryPath string
	appFs        = afero.NewOsFs()
)

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{addCmd, updateCmd, validateCmd} {
		fs.StringVar(&registryPath, "path", "configs/templates.json", "Path to registry file")
	}

	// Add command flags
	name := addCmd.String("name", "", "Template name (e.g., loan_application)")
	file := addCmd.String("file", "", "Template file, relative to the template directory")
	description := addCmd.String("description", "", "Description")
	layoutVersion := addCmd.String("layout", layout.Default.Version(), "Field layout version")
	required := addCmd.String("required", "", "Comma separated required field ids")
	makeDefault := addCmd.Bool("default", false, "Make this the default template")

	// Update command flags
	nameUpdate := updateCmd.String("name", "", "Template name to update")
	field := updateCmd.String("field", "", "Field to update (file, description, layout, required)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *name == "" || *file == "" {
			fmt.Println("Error: name and file are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		tmpl := registry.Template{
			Name:           *name,
			File:           *file,
			Description:    *description,
			LayoutVersion:  *layoutVersion,
			RequiredFields: splitList(*required),
		}
		if err := addTemplate(tmpl, *makeDefault); err != nil {
			fmt.Printf("Error adding template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added template: %s\n", *name)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *nameUpdate == "" || *field == "" {
			fmt.Println("Error: name and field are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateTemplate(*nameUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating template: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated template %s, field %s to %s\n", *nameUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(appFs, registryPath)
		if err == nil {
			err = reg.Validate(knownLayout)
		}
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d templates.\n", len(reg.Templates))

	case "help":
		fallthrough
	default:
		help()
	}
}

func knownLayout(version string) bool {
	_, ok := layout.Lookup(version)
	return ok
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func addTemplate(tmpl registry.Template, makeDefault bool) error {
	reg, err := registry.LoadRegistry(appFs, registryPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.TemplateRegistry{Version: "1.0.0"}
	}

	if _, exists := reg.Lookup(tmpl.Name); exists && tmpl.Name != "" {
		return fmt.Errorf("template %s already exists", tmpl.Name)
	}
	if !knownLayout(tmpl.LayoutVersion) {
		return fmt.Errorf("unknown layout version %s (known: %s)", tmpl.LayoutVersion, strings.Join(layout.Versions(), ", "))
	}

	reg.Templates = append(reg.Templates, tmpl)
	if makeDefault || reg.DefaultTemplate == "" {
		reg.DefaultTemplate = tmpl.Name
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.SaveRegistry(appFs, reg, registryPath)
}

func updateTemplate(name, field, value string) error {
	reg, err := registry.LoadRegistry(appFs, registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	tmpl, ok := reg.Lookup(name)
	if !ok || name == "" {
		return fmt.Errorf("template %s not found", name)
	}

	switch field {
	case "file":
		tmpl.File = value
	case "description":
		tmpl.Description = value
	case "layout":
		if !knownLayout(value) {
			return fmt.Errorf("unknown layout version %s", value)
		}
		tmpl.LayoutVersion = value
	case "required":
		tmpl.RequiredFields = splitList(value)
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.SaveRegistry(appFs, reg, registryPath)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a form template to the registry
  update   Update an existing template's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater add -name loan_application -file "Loan Application Form.pdf" -required text1,text297 -default
  registry-updater update -name loan_application -field layout -value v1
  registry-updater validate -path configs/templates.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
