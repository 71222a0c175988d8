package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrMissingSource is returned by FakeFetcher for unknown URLs.
var ErrMissingSource = errors.New("testutil: missing source")

// FakeFetcher serves in-memory buffers by URL and counts calls.
type FakeFetcher struct {
	mu      sync.Mutex
	sources map[string][]float64
	calls   map[string]int
	rate    int
}

// NewFakeFetcher returns a fetcher reporting sampleRate and serving sources.
func NewFakeFetcher(sampleRate int, sources map[string][]float64) *FakeFetcher {
	if sources == nil {
		sources = map[string][]float64{}
	}

	return &FakeFetcher{
		sources: sources,
		calls:   map[string]int{},
		rate:    sampleRate,
	}
}

// Fetch returns a copy of the buffer registered for url.
func (f *FakeFetcher) Fetch(_ context.Context, url string) ([]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[url]++
	src, ok := f.sources[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSource, url)
	}

	out := make([]float64, len(src))
	copy(out, src)

	return out, nil
}

// SampleRate returns the rate passed to NewFakeFetcher.
func (f *FakeFetcher) SampleRate() int { return f.rate }

// Calls returns how often url was fetched.
func (f *FakeFetcher) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[url]
}
