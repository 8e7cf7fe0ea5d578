package cli

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/flowatlas/flowatlas/pkg/dataset"
	"github.com/flowatlas/flowatlas/pkg/errors"
)

// allOption is listed first in every dropdown.
const allOption = "all"

// optionsCommand creates the options command, which lists the dropdown
// values of a field.
func (c *CLI) optionsCommand() *cobra.Command {
	var (
		schema  string
		asJSON  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "options [data.csv] [year|origin|asylum]",
		Short: "List the dropdown values of a field",
		Long: `List the values a user can pick for a field: "all" followed by the
sorted distinct values in the dataset.`,
		Example: `  flowatlas options refugees.csv origin
  flowatlas options refugees.csv year --json`,
		Args: cobra.ExactArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 1 {
				return []string{"year", "origin", "asylum"}, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveDefault
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOptions(cmd.Context(), args[0], args[1], schema, asJSON, noCache)
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "column preset: unhcr (default), owid, applications")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print a JSON array")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching of remote files")

	return cmd
}

func (c *CLI) runOptions(ctx context.Context, input, field, schemaName string, asJSON, noCache bool) error {
	f, err := dataset.ParseField(field)
	if err != nil {
		return err
	}
	if f == dataset.FieldValue {
		return errors.New(errors.ErrCodeInvalidInput, "value is not a dropdown field")
	}

	s, err := c.schemaFor(schemaName, defaultFlowSchema)
	if err != nil {
		return err
	}
	if f == dataset.FieldAsylum && !s.HasAsylum() {
		return errors.New(errors.ErrCodeInvalidSchema, "schema has no asylum column")
	}

	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return err
	}
	defer cc.Close()

	ds, err := c.loadDataset(ctx, input, s, cc)
	if err != nil {
		return err
	}
	values := append([]string{allOption}, ds.Options(f)...)

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	}
	printList(values)
	return nil
}
