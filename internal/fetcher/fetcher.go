// Package fetcher implements C1: resolving a repository-relative path plus
// an unknown compression suffix into a locally-cached file, probing a
// fixed, stable set of compression extensions in order.
//
// The remote transport follows git-pkgs-registries/fetch: a DNS-caching
// resolver, capped exponential-backoff retries, and one circuit breaker per
// upstream host so a dead mirror degrades to fast failures instead of
// stalling the worker pool.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
	circuit "github.com/rubyist/circuitbreaker"
	"github.com/sirupsen/logrus"

	"github.com/ralt/appstream-gen/internal/utils"
)

// ErrNotFound is returned when none of the candidate compression
// extensions resolve, locally or remotely.
var ErrNotFound = errors.New("fetcher: not found")

// extensionOrder is the stable probing order for the compression-extension
// slot (§9: "not rigorously documented in the source; specify a stable
// order and treat it as part of the contract").
var extensionOrder = []string{"xz", "zst", "bz2", "gz", ""}

// Fetcher resolves repository-relative paths into locally-cached files.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithMaxRetries overrides the maximum retry attempts for a remote fetch.
func WithMaxRetries(n int) Option {
	return func(f *Fetcher) { f.maxRetries = n }
}

// WithBaseDelay overrides the base delay for the retry backoff.
func WithBaseDelay(d time.Duration) Option {
	return func(f *Fetcher) { f.baseDelay = d }
}

// New creates a Fetcher with a DNS-caching HTTP transport.
func New(opts ...Option) *Fetcher {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}

	f := &Fetcher{
		client: &http.Client{
			Timeout: 2 * time.Minute,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					var lastErr error
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
						lastErr = err
					}
					return nil, fmt.Errorf("dial any resolved IP for %s: %w", host, lastErr)
				},
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:  "appstream-gen/1.0",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
		breakers:   make(map[string]*circuit.Breaker),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch resolves root+relPathTemplate (which must contain exactly one
// "%ext%" placeholder) into a local path, trying each candidate
// compression extension in turn. tmpDir is only used, and only created,
// when root names a remote repository.
func (f *Fetcher) Fetch(ctx context.Context, root, tmpDir, relPathTemplate string) (string, error) {
	var lastErr error
	for _, ext := range extensionOrder {
		relPath := candidatePath(relPathTemplate, ext)
		localPath, err := f.resolve(ctx, root, tmpDir, relPath)
		if err == nil {
			return localPath, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("%w: %s (tried %v): %v", ErrNotFound, relPathTemplate, extensionOrder, lastErr)
}

// candidatePath substitutes ext into the "%ext%" placeholder, dropping the
// preceding "." entirely when ext is empty.
func candidatePath(template, ext string) string {
	if ext == "" {
		return strings.Replace(template, ".%ext%", "", 1)
	}
	return strings.Replace(template, "%ext%", ext, 1)
}

func isRemote(root string) bool {
	return strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://")
}

func (f *Fetcher) resolve(ctx context.Context, root, tmpDir, relPath string) (string, error) {
	if !isRemote(root) {
		local := filepath.Join(strings.TrimPrefix(root, "file://"), relPath)
		if utils.PresentAndNonEmpty(local) {
			return local, nil
		}
		return "", fmt.Errorf("local file absent or empty: %s", local)
	}

	cachePath := filepath.Join(tmpDir, filepath.FromSlash(relPath))
	if utils.PresentAndNonEmpty(cachePath) {
		return cachePath, nil
	}

	fetchURL := strings.TrimRight(root, "/") + "/" + relPath
	data, err := f.fetchRemote(ctx, fetchURL)
	if err != nil {
		return "", err
	}

	if err := utils.WriteFile(cachePath, data, 0644); err != nil {
		return "", fmt.Errorf("caching %s: %w", fetchURL, err)
	}
	return cachePath, nil
}

func (f *Fetcher) fetchRemote(ctx context.Context, fetchURL string) ([]byte, error) {
	breaker := f.breakerFor(fetchURL)
	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit open for %s", hostOf(fetchURL))
	}

	var data []byte
	err := breaker.Call(func() error {
		body, err := f.fetchWithRetry(ctx, fetchURL)
		data = body
		return err
	}, 0)
	return data, err
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, fetchURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			jitter := time.Duration(float64(delay) * rand.Float64() * 0.1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay + jitter):
			}
		}

		body, err := f.doFetch(ctx, fetchURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		logrus.Debugf("fetcher: retrying %s after error: %v", fetchURL, err)
	}
	return nil, lastErr
}

func (f *Fetcher) doFetch(ctx context.Context, fetchURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", fetchURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return io.ReadAll(resp.Body)
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, fetchURL)
	}
}

func (f *Fetcher) breakerFor(fetchURL string) *circuit.Breaker {
	host := hostOf(fetchURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if b, ok := f.breakers[host]; ok {
		return b
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	b := circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	f.breakers[host] = b
	return b
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}
