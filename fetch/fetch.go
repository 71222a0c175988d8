// Package fetch resolves audio URLs to mono PCM buffers at a fixed sample
// rate.
//
// HTTPFetcher layers two caches in front of the network: an in-process LRU
// of decoded buffers bounded by bytes, and an optional zstd-compressed disk
// cache holding both the downloaded bytes and the resampled buffers.
// Concurrent requests for the same URL share one download.
package fetch

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/cwbudde/algo-wiggle/dsp/spectral"
	"github.com/cwbudde/algo-wiggle/internal/audiofile"
	"github.com/cwbudde/algo-wiggle/internal/cache"
)

// Fetcher resolves a URL to mono samples at SampleRate.
//
// Implementations must be safe for concurrent use. Renderers key their
// memoization on the fetcher value, so implementations should be pointers.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]float64, error)
	SampleRate() int
}

const (
	defaultMemoryBudget = 256 << 20
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "algo-wiggle"
	maxDownloadBytes    = 512 << 20
)

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithRateLimit allows at most rps downloads per second with the given
// burst. rps <= 0 disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(f *HTTPFetcher) {
		if rps <= 0 {
			f.limiter = nil
			return
		}

		f.limiter = rate.NewLimiter(rate.Limit(rps), max(1, burst))
	}
}

// WithDiskCache enables the persistent cache.
func WithDiskCache(dc *DiskCache) Option {
	return func(f *HTTPFetcher) { f.disk = dc }
}

// WithMemoryBudget bounds the in-process buffer cache in bytes.
func WithMemoryBudget(bytes int64) Option {
	return func(f *HTTPFetcher) { f.memoryBudget = bytes }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(f *HTTPFetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithUserAgent sets the User-Agent header sent with downloads.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) { f.userAgent = ua }
}

// HTTPFetcher downloads http(s) and file URLs, decodes WAV or MP3, downmixes
// to mono and resamples to its sample rate.
type HTTPFetcher struct {
	sampleRate   int
	client       *http.Client
	limiter      *rate.Limiter
	disk         *DiskCache
	memoryBudget int64
	userAgent    string
	logger       *log.Logger

	buffers *cache.Group[string, []float64]
}

// NewHTTPFetcher returns a fetcher producing buffers at sampleRate.
func NewHTTPFetcher(sampleRate int, opts ...Option) (*HTTPFetcher, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("fetch: sample rate must be positive, got %d", sampleRate)
	}

	f := &HTTPFetcher{
		sampleRate:   sampleRate,
		client:       &http.Client{Timeout: defaultTimeout},
		memoryBudget: defaultMemoryBudget,
		userAgent:    defaultUserAgent,
		logger:       log.Default(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}

	lru := cache.NewLRU[string, []float64](f.memoryBudget, func(b []float64) int64 { return int64(len(b)) * 8 })
	f.buffers = cache.NewGroup(lru, func(u string) string { return u })

	return f, nil
}

// SampleRate returns the rate of every buffer Fetch returns.
func (f *HTTPFetcher) SampleRate() int { return f.sampleRate }

// Fetch returns the mono buffer for rawURL. The returned slice is the
// caller's to modify.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]float64, error) {
	buf, hit, err := f.buffers.Get(ctx, rawURL, func(ctx context.Context) ([]float64, error) {
		return f.load(ctx, rawURL)
	})
	if err != nil {
		return nil, err
	}

	if hit {
		f.logger.Debug("fetch memory hit", "url", rawURL)
	}

	out := make([]float64, len(buf))
	copy(out, buf)

	return out, nil
}

// CacheStats returns the in-process cache counters.
func (f *HTTPFetcher) CacheStats() cache.Stats { return f.buffers.Stats() }

// CachedSize reports the compressed on-disk size of rawURL's download.
func (f *HTTPFetcher) CachedSize(rawURL string) (int64, bool) {
	if f.disk == nil {
		return 0, false
	}

	return f.disk.Stat(rawKey(rawURL))
}

func (f *HTTPFetcher) load(ctx context.Context, rawURL string) ([]float64, error) {
	pcmKey := pcmKey(rawURL, f.sampleRate)
	if f.disk != nil {
		if data, ok := f.disk.Get(pcmKey); ok {
			f.logger.Debug("fetch disk hit", "url", rawURL, "rate", f.sampleRate)
			return decodeFloats(data), nil
		}
	}

	raw, err := f.raw(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	a, err := audiofile.Decode(raw)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	mono := a.Mono()
	if a.SampleRate != f.sampleRate {
		f.logger.Debug("resampling", "url", rawURL, "from", a.SampleRate, "to", f.sampleRate)
		mono, err = spectral.Resample(mono, a.SampleRate, f.sampleRate)
		if err != nil {
			return nil, &Error{URL: rawURL, Err: err}
		}
	}

	if f.disk != nil {
		if err := f.disk.Put(pcmKey, encodeFloats(mono)); err != nil {
			f.logger.Warn("disk cache write failed", "url", rawURL, "err", err)
		}
	}

	return mono, nil
}

// raw returns the undecoded bytes for rawURL from disk or the network.
func (f *HTTPFetcher) raw(ctx context.Context, rawURL string) ([]byte, error) {
	key := rawKey(rawURL)
	if f.disk != nil {
		if data, ok := f.disk.Get(key); ok {
			return data, nil
		}
	}

	data, err := f.download(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	f.logger.Info("downloaded", "url", rawURL, "size", humanize.Bytes(uint64(len(data))))

	if f.disk != nil {
		if err := f.disk.Put(key, data); err != nil {
			f.logger.Warn("disk cache write failed", "url", rawURL, "err", err)
		}
	}

	return data, nil
}

func (f *HTTPFetcher) download(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	switch u.Scheme {
	case "file":
		data, err := os.ReadFile(u.Path)
		if err != nil {
			return nil, &Error{URL: rawURL, Err: err}
		}

		return data, nil
	case "http", "https":
	default:
		return nil, &Error{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &Error{URL: rawURL, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{URL: rawURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, &Error{URL: rawURL, Status: resp.StatusCode, Err: err}
	}

	if len(data) > maxDownloadBytes {
		return nil, &Error{URL: rawURL, Status: resp.StatusCode,
			Err: fmt.Errorf("body exceeds %s", humanize.Bytes(maxDownloadBytes))}
	}

	return data, nil
}

func rawKey(rawURL string) string { return "raw\x00" + rawURL }

func pcmKey(rawURL string, sampleRate int) string {
	return "pcm\x00" + strconv.Itoa(sampleRate) + "\x00" + rawURL
}

func encodeFloats(x []float64) []byte {
	out := make([]byte, 8*len(x))
	for i, v := range x {
		binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(v))
	}

	return out
}

func decodeFloats(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}

	return out
}
