package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-wiggle/registry"
)

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate DOCUMENT",
		Short: "Check a composition document without rendering it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application(cmd)
			if err != nil {
				return err
			}

			doc, err := a.readDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%s, %d sources)\n",
				args[0], doc.Synth.Name(), len(registry.SourceMaterial(doc.Params)))

			return nil
		},
	}
}
