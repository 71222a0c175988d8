package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-wiggle/internal/config"
	"github.com/cwbudde/algo-wiggle/internal/logging"
)

type globalFlags struct {
	configFile  string
	logLevel    string
	sampleRate  int
	concurrency int
}

// cli holds state shared by the subcommands. The application is built on
// first use so that commands like man run without a config.
type cli struct {
	flags   globalFlags
	app     *app
	closers []func() error
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}
	root := &cobra.Command{
		Use:          "wiggle",
		Short:        "Render sampler and sequencer compositions",
		Long:         "wiggle renders compositions of sampled audio and nested sequencer patterns to WAV files or the speakers.",
		Version:      version(),
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configFile, "config", "", "config file (default: wiggle.yml in the user config directory)")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.IntVarP(&c.flags.sampleRate, "rate", "r", 0, "output sample rate in Hz")
	pf.IntVarP(&c.flags.concurrency, "jobs", "j", 0, "number of events rendered in parallel")

	root.AddCommand(
		newRenderCmd(c),
		newPlayCmd(c),
		newDepsCmd(c),
		newValidateCmd(c),
		newSynthsCmd(c),
		newManCmd(root),
	)

	return root, c
}

func version() string {
	v := Version
	if v == "" {
		v = "unknown (built from source)"
	}

	if len(CommitSHA) >= 7 {
		v += " (" + CommitSHA[:7] + ")"
	}

	return v
}

// application loads the config, applies flag overrides and builds the app.
func (c *cli) application(cmd *cobra.Command) (*app, error) {
	if c.app != nil {
		return c.app, nil
	}

	cfg, err := config.Load(c.flags.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = c.flags.logLevel
	}

	if flags.Changed("rate") {
		cfg.SampleRate = c.flags.sampleRate
	}

	if flags.Changed("jobs") {
		cfg.Concurrency = c.flags.concurrency
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	c.closers = append(c.closers, closer)
	log.SetDefault(logger)
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("wiggle: %w", err)
	}

	c.closers = append(c.closers, a.close)
	c.app = a

	return a, nil
}

// close releases resources in reverse order of acquisition.
func (c *cli) close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}

	c.closers = nil

	return errors.Join(errs...)
}
