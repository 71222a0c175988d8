package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSynthsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "synths",
		Short: "List the registered synths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.application(cmd)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPARAMS")
			for _, s := range a.registry.List() {
				fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID(), s.Name(), s.Tag())
			}

			return w.Flush()
		},
	}
}
