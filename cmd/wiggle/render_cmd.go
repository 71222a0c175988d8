package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-wiggle/internal/audiofile"
)

const wavHeaderBytes = 44

func newRenderCmd(c *cli) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "render DOCUMENT",
		Short: "Render a composition to a mono 16-bit WAV file",
		Long:  "Render a composition to a mono 16-bit WAV file. Use - to read the document from stdin.",
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

			path := output
			if path == "" {
				path = defaultOutput(args[0])
			}

			if err := audiofile.WriteWAVFile(path, samples, a.cfg.SampleRate); err != nil {
				return err
			}

			size := uint64(wavHeaderBytes + 2*len(samples))
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.2fs\t%s\n", path, a.seconds(len(samples)), humanize.Bytes(size))

			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: the document name with a .wav extension)")

	return cmd
}

func defaultOutput(arg string) string {
	if arg == "-" {
		return "wiggle.wav"
	}

	base := filepath.Base(arg)

	return strings.TrimSuffix(base, filepath.Ext(base)) + ".wav"
}
