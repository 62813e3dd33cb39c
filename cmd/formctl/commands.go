package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"loan-form-workers/internal/formfill/filler"
	"loan-form-workers/internal/formfill/layout"
	"loan-form-workers/internal/formfill/mapping"
)

type app struct {
	fs            afero.Fs
	open          filler.Opener
	layoutVersion string
	table         *layout.Table
}

func (a *app) selectLayout() error {
	if a.layoutVersion == "" {
		a.table = layout.Default
		return nil
	}
	t, ok := layout.Lookup(a.layoutVersion)
	if !ok {
		return fmt.Errorf("unknown layout version %q (known: %s)", a.layoutVersion, strings.Join(layout.Versions(), ", "))
	}
	a.table = t
	return nil
}

func (a *app) generate(recordPath string) (mapping.Mapping, error) {
	f, err := a.fs.Open(recordPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	record, err := mapping.DecodeRecord(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", recordPath, err)
	}
	return mapping.NewGenerator(a.table).Generate(record), nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mappingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mapping <record.json>",
		Short: "Print the field mapping generated for a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.generate(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), m)
		},
	}
}

func fillCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "fill <template.pdf> <record.json> <out.pdf>",
		Short: "Fill a template from a record and list unfilled fields",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.generate(args[1])
			if err != nil {
				return err
			}

			f := filler.New(filler.WithFs(a.fs), filler.WithOpener(a.open))
			missing, err := f.Fill(cmd.Context(), args[0], m, args[2])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wrote %s (%d fields)\n", args[2], len(m))
			for _, id := range missing {
				fmt.Fprintf(out, "missing %s\n", id)
			}
			if strict && len(missing) > 0 {
				return fmt.Errorf("%d mapped fields have no widget in %s", len(missing), args[0])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when mapped fields are left unfilled")
	return cmd
}

func inspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <template.pdf>",
		Short: "List the form widgets of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := afero.ReadFile(a.fs, args[0])
			if err != nil {
				return err
			}
			doc, err := a.open(bytes.NewReader(raw))
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}

			fields := doc.ListFields()
			ids := make([]string, 0, len(fields))
			byID := make(map[string]filler.Field, len(fields))
			for _, f := range fields {
				ids = append(ids, f.ID)
				byID[f.ID] = f
			}
			layout.SortFieldIDs(ids)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tKIND\tWIDGET")
			for _, id := range ids {
				f := byID[id]
				kind := string(f.Kind)
				if kind == "" {
					kind = "other"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", id, kind, f.Name)
			}
			return tw.Flush()
		},
	}
}

func validateCmd(a *app) *cobra.Command {
	var required []string
	cmd := &cobra.Command{
		Use:   "validate <record.json>",
		Short: "List the required fields a record leaves empty",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.generate(args[0])
			if err != nil {
				return err
			}
			if len(required) == 0 {
				required = mapping.DefaultRequiredFields
			}

			out := cmd.OutOrStdout()
			missing := mapping.MissingRequired(m, required)
			if len(missing) == 0 {
				fmt.Fprintln(out, "all required fields present")
				return nil
			}
			for _, id := range missing {
				fmt.Fprintf(out, "missing %s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&required, "required", nil, "Required field ids (default: the standard set)")
	return cmd
}

func summaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <record.json>",
		Short: "Summarise the mapping generated for a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.generate(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), mapping.Summarize(m))
		},
	}
}

func layoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Print the field layout table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := a.table.Rows()
			sort.SliceStable(rows, func(i, j int) bool { return rows[i].Field < rows[j].Field })

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "# layout %s\n", a.table.Version())
			fmt.Fprintln(tw, "FIELD\tKIND\tFIRST\tINSTANCES\tCELLS")
			for _, r := range rows {
				first, _ := r.ID(0)
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", r.Field, r.Kind, first, r.Cap(), r.Cells())
			}
			return tw.Flush()
		},
	}
}
