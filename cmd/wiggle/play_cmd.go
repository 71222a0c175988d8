package main

import (
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-wiggle/internal/playback"
)

func newPlayCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "play DOCUMENT",
		Short: "Render a composition and play it on the default output device",
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

			samples, err := a.render(cmd.Context(), doc)
			if err != nil {
				return err
			}

			p, err := playback.New(a.cfg.SampleRate, playback.WithLogger(a.logger))
			if err != nil {
				return err
			}

			return p.Play(cmd.Context(), samples)
		},
	}
}
