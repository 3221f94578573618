// Package source resolves document references (file paths or URLs) to
// raw bytes. It never interprets document content; the verifier treats
// documents as opaque byte sequences.
package source

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/docattest/claimcheck/internal/cache"
	"github.com/docattest/claimcheck/internal/model"
	"github.com/docattest/claimcheck/internal/util"
)

const loadMaxRetries = 3

// loadSleepFunc is the sleep function used between retries (injectable for tests)
var loadSleepFunc = time.Sleep

// Document is a resolved document: its bytes plus identifying metadata.
type Document struct {
	Ref    string
	Bytes  []byte
	SHA256 string
	Meta   model.SourceMeta
}

// Loader loads documents from local paths or http(s) URLs.
type Loader struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker // nil when robots checking is disabled
}

// NewLoader creates a loader from the HTTP configuration.
func NewLoader(cfg model.HTTPConfig) *Loader {
	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var robots *util.RobotsChecker
	if cfg.CheckRobots {
		robots = util.NewRobotsChecker(util.NormalizeUserAgent(cfg.UserAgent), cfg.Timeout)
	}

	return &Loader{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		robots:    robots,
	}
}

// IsRemote reports whether the reference is an http(s) URL rather than a
// local file path.
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// Load resolves a document reference to bytes. Remote references are
// fetched with retry on transient failures; local references are read
// from disk.
func (l *Loader) Load(ctx context.Context, ref string) (*Document, error) {
	if IsRemote(ref) {
		return l.fetchWithRetry(ctx, ref)
	}
	return l.readFile(ref)
}

// readFile loads a local document.
func (l *Loader) readFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	return &Document{
		Ref:    path,
		Bytes:  data,
		SHA256: cache.Digest(data),
	}, nil
}

// fetchWithRetry retries transient remote failures with exponential backoff.
func (l *Loader) fetchWithRetry(ctx context.Context, rawURL string) (*Document, error) {
	var doc *Document
	var err error

	for attempt := 0; attempt < loadMaxRetries; attempt++ {
		doc, err = l.fetch(ctx, rawURL)
		if err == nil || !isRetryable(err) {
			return doc, err
		}
		if attempt < loadMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			loadSleepFunc(backoff)
		}
	}
	return doc, err
}

// fetch retrieves a remote document once.
func (l *Loader) fetch(ctx context.Context, rawURL string) (*Document, error) {
	if l.robots != nil {
		allowed, crawlDelay, err := l.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("fetch disallowed by robots.txt: %s", rawURL)
		}
		if crawlDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(crawlDelay):
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	meta := model.SourceMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
		Headers:      make(map[string]string),
	}
	for _, key := range []string{"Content-Length", "Server", "Cache-Control"} {
		if val := resp.Header.Get(key); val != "" {
			meta.Headers[key] = val
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{status: resp.StatusCode, text: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Document{
		Ref:    rawURL,
		Bytes:  body,
		SHA256: cache.Digest(body),
		Meta:   meta,
	}, nil
}

// statusError carries the HTTP status so retry logic can classify it.
type statusError struct {
	status int
	text   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.status, e.text)
}

// isRetryable reports whether the fetch failure is transient.
func isRetryable(err error) bool {
	if statusErr, ok := err.(*statusError); ok {
		return statusErr.status >= 500 || statusErr.status == 429
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
