// Command wiggle renders sampler and sequencer compositions to audio.
//
// Usage:
//
//	wiggle render [flags] DOCUMENT
//	wiggle play [flags] DOCUMENT
//	wiggle deps [--fetch] DOCUMENT
//	wiggle validate DOCUMENT
//	wiggle synths
//
// A document is a YAML or JSON file naming a synth and its parameters.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

var (
	// Version as provided by the release build.
	Version = ""
	// CommitSHA as provided by the release build.
	CommitSHA = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	root, c := newRootCmd()
	err := root.ExecuteContext(ctx)
	stop()
	if cerr := c.close(); cerr != nil && err == nil {
		fmt.Fprintln(os.Stderr, cerr)
		err = cerr
	}

	if err != nil {
		os.Exit(1)
	}
}
