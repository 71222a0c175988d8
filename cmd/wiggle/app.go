package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"

	"github.com/cwbudde/algo-wiggle/fetch"
	"github.com/cwbudde/algo-wiggle/internal/config"
	"github.com/cwbudde/algo-wiggle/registry"
	"github.com/cwbudde/algo-wiggle/sampler"
	"github.com/cwbudde/algo-wiggle/sequencer"
)

// app wires the fetcher, its caches and the synth registry from a config.
type app struct {
	cfg      config.Config
	logger   *log.Logger
	disk     *fetch.DiskCache
	fetcher  *fetch.HTTPFetcher
	registry *registry.Registry
}

func newApp(cfg config.Config, logger *log.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	opts := []fetch.Option{
		fetch.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		fetch.WithRateLimit(cfg.RequestsPerSecond, 1),
		fetch.WithMemoryBudget(cfg.MemoryCacheBytes),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithLogger(logger),
	}

	if cfg.DiskCacheBytes > 0 {
		dc, err := fetch.NewDiskCache(filepath.Join(cfg.CacheDir, "sources"), cfg.DiskCacheBytes, cfg.CompressLevel)
		if err != nil {
			return nil, err
		}

		a.disk = dc
		opts = append(opts, fetch.WithDiskCache(dc))
	}

	f, err := fetch.NewHTTPFetcher(cfg.SampleRate, opts...)
	if err != nil {
		a.close()
		return nil, err
	}

	a.fetcher = f

	a.registry, err = registry.Default(f,
		registry.WithSamplerOptions(
			sampler.WithMemoBudget(cfg.RenderMemoBytes),
			sampler.WithLogger(logger),
		),
		registry.WithSequencerOptions(
			sequencer.WithConcurrency(cfg.Concurrency),
			sequencer.WithLogger(logger),
		),
	)
	if err != nil {
		a.close()
		return nil, err
	}

	return a, nil
}

func (a *app) close() error {
	if a.disk == nil {
		return nil
	}

	return a.disk.Close()
}

// readDocument parses the document at arg, or stdin for "-".
func (a *app) readDocument(arg string, stdin io.Reader) (*registry.Document, error) {
	r := stdin
	if arg != "-" {
		path, err := homedir.Expand(arg)
		if err != nil {
			return nil, err
		}

		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		defer f.Close()
		r = f
	}

	doc, err := a.registry.ReadDocument(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", arg, err)
	}

	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", arg, err)
	}

	return doc, nil
}

func (a *app) render(ctx context.Context, doc *registry.Document) ([]float64, error) {
	start := time.Now()
	out, err := doc.Synth.Render(ctx, doc.Params, a.cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	a.logger.Info("rendered",
		"synth", doc.Synth.Name(),
		"seconds", fmt.Sprintf("%.2f", a.seconds(len(out))),
		"took", time.Since(start).Round(time.Millisecond))

	return out, nil
}

func (a *app) seconds(samples int) float64 {
	return float64(samples) / float64(a.cfg.SampleRate)
}
