package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-blockhelpers/components/stock"
)

func newListCmd(c *cli) *cobra.Command {
	var (
		asJSON    bool
		templates bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered helpers (or templates with --templates-only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if templates {
				names, err := c.app.templateNames()
				if err != nil {
					return err
				}
				if asJSON {
					return json.NewEncoder(out).Encode(names)
				}
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			entries := stock.Catalog(c.app.registry)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tRENDER\tWITHIN\tDOC")
			for _, entry := range entries {
				within := entry.Within
				if within == "" {
					within = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", entry.Name, entry.Render, within, entry.Doc)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	cmd.Flags().BoolVar(&templates, "templates-only", false, "list template names instead of helpers")
	return cmd
}
