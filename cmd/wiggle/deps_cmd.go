package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-wiggle/registry"
)

func newDepsCmd(c *cli) *cobra.Command {
	var prefetch bool
	cmd := &cobra.Command{
		Use:   "deps DOCUMENT",
		Short: "List the source material a composition needs",
		Long: "List every distinct URL a composition reads, with its size in the disk cache. " +
			"With --fetch, missing sources are downloaded first.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.application(cmd)
			if err != nil {
				return err
			}

			doc, err := a.readDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			sources := registry.SourceMaterial(doc.Params)

			if prefetch {
				g, ctx := errgroup.WithContext(cmd.Context())
				g.SetLimit(a.cfg.Concurrency)
				for _, s := range sources {
					g.Go(func() error {
						_, err := a.fetcher.Fetch(ctx, s.URL)
						return err
					})
				}

				if err := g.Wait(); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "URL\tCACHED")
			for _, s := range sources {
				size := "-"
				if n, ok := a.fetcher.CachedSize(s.URL); ok {
					size = humanize.Bytes(uint64(n))
				}

				fmt.Fprintf(w, "%s\t%s\n", s.URL, size)
			}

			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&prefetch, "fetch", false, "download sources that are not cached")

	return cmd
}
