// cmd/formctl/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"loan-form-workers/internal/formfill/filler"
)

var Version = "dev"

func main() {
	a := &app{fs: afero.NewOsFs(), open: filler.OpenPDF}
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "formctl",
		Short:         "Inspect and fill loan application form templates",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.selectLayout()
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.layoutVersion, "layout", "", "Field layout version (default: latest)")

	rootCmd.AddCommand(mappingCmd(a))
	rootCmd.AddCommand(fillCmd(a))
	rootCmd.AddCommand(inspectCmd(a))
	rootCmd.AddCommand(validateCmd(a))
	rootCmd.AddCommand(summaryCmd(a))
	rootCmd.AddCommand(layoutCmd(a))

	return rootCmd
}
