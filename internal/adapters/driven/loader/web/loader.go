// Package web provides a DocumentLoader that fetches URLs over HTTP and
// extracts their text through a normaliser registry.
//
// Fetches run concurrently under a shared rate limit. Transient failures
// (network errors, 429 and 5xx responses) are retried with exponential
// backoff. A URL that still fails, or whose body cannot be normalised, is
// logged and left out of the result.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/scheme-research/internal/core/domain"
	"github.com/custodia-labs/scheme-research/internal/core/ports/driven"
	"github.com/custodia-labs/scheme-research/internal/logger"
	"github.com/custodia-labs/scheme-research/internal/normalisers"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// Default configuration values.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultMaxBodyBytes      = 20 << 20
	DefaultRequestsPerSecond = 4.0
	DefaultBurst             = 4
	DefaultConcurrency       = 4
	DefaultMaxRetries        = 2
	DefaultUserAgent         = "scheme-research/1.0 (+https://github.com/custodia-labs/scheme-research)"
)

// Config holds configuration for the web loader.
type Config struct {
	// Timeout bounds a single HTTP attempt (default: 30s).
	Timeout time.Duration

	// MaxBodyBytes caps how much of a response body is read (default: 20 MiB).
	MaxBodyBytes int64

	// RequestsPerSecond is the sustained fetch rate across all URLs.
	RequestsPerSecond float64

	// Burst is the token bucket size.
	Burst int

	// Concurrency is the number of URLs fetched in parallel.
	Concurrency int

	// MaxRetries is the number of retries after the first attempt.
	// Negative disables retries.
	MaxRetries int

	// InitialBackoff is the first retry delay (default: backoff library default).
	InitialBackoff time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// Loader fetches web documents.
type Loader struct {
	client     *http.Client
	registry   driven.NormaliserRegistry
	limiter    *rate.Limiter
	cfg        Config
	maxRetries uint64
}

// New creates a web loader that extracts text with registry.
func New(cfg Config, registry driven.NormaliserRegistry) (*Loader, error) {
	if registry == nil {
		return nil, fmt.Errorf("web loader: normaliser registry is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	var retries uint64
	if cfg.MaxRetries > 0 {
		retries = uint64(cfg.MaxRetries)
	}

	return &Loader{
		client:     &http.Client{Timeout: cfg.Timeout},
		registry:   registry,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cfg:        cfg,
		maxRetries: retries,
	}, nil
}

// Load fetches and normalises every URL. Results keep input order; failed
// URLs are omitted. Only context cancellation fails the whole call.
func (l *Loader) Load(ctx context.Context, urls []string) ([]domain.LoadedDocument, error) {
	results := make([]*domain.LoadedDocument, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.cfg.Concurrency)

	for i, rawURL := range urls {
		g.Go(func() error {
			doc, err := l.loadOne(gctx, rawURL)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Warn("skipping %s: %v", rawURL, err)
				return nil
			}
			results[i] = doc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([]domain.LoadedDocument, 0, len(urls))
	for _, doc := range results {
		if doc != nil {
			docs = append(docs, *doc)
		}
	}
	return docs, nil
}

func (l *Loader) loadOne(ctx context.Context, rawURL string) (*domain.LoadedDocument, error) {
	target, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}

	raw, err := l.fetch(ctx, target)
	if err != nil {
		return nil, err
	}

	doc, err := l.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, fmt.Errorf("no text content")
	}

	// Keep the URL as the user wrote it so answers cite the same source.
	doc.Source = rawURL
	logger.Debug("loaded %s (%s, %d chars)", rawURL, raw.MIMEType, len(doc.Content))
	return doc, nil
}

// fetch GETs target, retrying transient failures.
func (l *Loader) fetch(ctx context.Context, target string) (*domain.RawDocument, error) {
	var raw *domain.RawDocument
	attempt := 0

	operation := func() error {
		attempt++
		if err := l.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		doc, err := l.get(ctx, target)
		if err != nil {
			var perm *permanentError
			if errors.As(err, &perm) {
				return backoff.Permanent(err)
			}
			logger.Debug("fetch %s attempt %d failed: %v", target, attempt, err)
			return err
		}
		raw = doc
		return nil
	}

	b := backoff.NewExponentialBackOff()
	if l.cfg.InitialBackoff > 0 {
		b.InitialInterval = l.cfg.InitialBackoff
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(b, l.maxRetries), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return raw, nil
}

// permanentError marks a response that retrying cannot fix.
type permanentError struct {
	status int
}

func (e *permanentError) Error() string {
	return "HTTP " + strconv.Itoa(e.status) + " " + http.StatusText(e.status)
}

func (l *Loader) get(ctx context.Context, target string) (*domain.RawDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", l.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf,text/plain;q=0.9,*/*;q=0.5")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, &permanentError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	mimeType := normalisers.BaseMIMEType(resp.Header.Get("Content-Type"))
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = normalisers.BaseMIMEType(http.DetectContentType(body))
	}

	return &domain.RawDocument{
		URI:      resp.Request.URL.String(),
		MIMEType: mimeType,
		Content:  body,
	}, nil
}

// validateURL accepts absolute http(s) URLs only.
func validateURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidInput, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", domain.ErrInvalidInput)
	}
	return trimmed, nil
}
