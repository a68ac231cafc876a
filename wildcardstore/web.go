package wildcardstore

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"

	"github.com/imagegen/paramweave/paramcore"
)

// WebConfig holds configuration for a WebStore.
type WebConfig struct {
	// StartURL is where link discovery begins (required).
	StartURL string

	// AllowedDomains restricts crawling to these hosts. Defaults to the
	// host of StartURL.
	AllowedDomains []string

	// IncludePatterns restricts which linked paths are fetched as
	// wildcard files. Defaults to "**/*.txt".
	IncludePatterns []string

	// RequestsPerSecond caps outgoing request rate (default 5).
	RequestsPerSecond float64

	UserAgent string
}

// WebStore is a paramcore.WildcardStore that discovers ".txt" wildcard
// files by crawling a site, rate-limiting its own requests.
type WebStore struct {
	config  WebConfig
	limiter *rate.Limiter

	mu       sync.Mutex
	crawled  bool
	contents map[string][]string
}

// NewWebStore creates a web-crawled wildcard store.
func NewWebStore(config WebConfig) (*WebStore, error) {
	if config.StartURL == "" {
		return nil, fmt.Errorf("StartURL is required")
	}
	parsed, err := url.Parse(config.StartURL)
	if err != nil {
		return nil, fmt.Errorf("invalid StartURL: %w", err)
	}
	if len(config.AllowedDomains) == 0 {
		config.AllowedDomains = []string{parsed.Host}
	}
	if len(config.IncludePatterns) == 0 {
		config.IncludePatterns = []string{"**/*.txt"}
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = 5
	}
	if config.UserAgent == "" {
		config.UserAgent = "paramweave-wildcardstore/1.0"
	}
	return &WebStore{
		config:   config,
		limiter:  rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		contents: make(map[string][]string),
	}, nil
}

// ListFiles crawls the site once, caching every matched ".txt" file's
// contents, and returns their names.
func (s *WebStore) ListFiles(ctx context.Context) ([]string, error) {
	if err := s.ensureCrawled(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.contents))
	for name := range s.contents {
		names = append(names, name)
	}
	return names, nil
}

// Get returns the cached options for name, crawling first if the cache is
// still empty.
func (s *WebStore) Get(ctx context.Context, name string) (paramcore.WildcardFile, error) {
	if err := s.ensureCrawled(ctx); err != nil {
		return paramcore.WildcardFile{}, err
	}
	s.mu.Lock()
	options, ok := s.contents[name]
	s.mu.Unlock()
	if !ok {
		return paramcore.WildcardFile{}, fmt.Errorf("wildcard file not found: %s", name)
	}
	return paramcore.WildcardFile{Name: name, Options: options}, nil
}

func (s *WebStore) ensureCrawled(ctx context.Context) error {
	s.mu.Lock()
	if s.crawled {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	c := colly.NewCollector(
		colly.AllowedDomains(s.config.AllowedDomains...),
		colly.Async(true),
	)
	c.UserAgent = s.config.UserAgent
	c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 2})

	c.OnRequest(func(r *colly.Request) {
		if err := s.limiter.Wait(ctx); err != nil {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		path := r.Request.URL.Path
		if !matchesAny(s.config.IncludePatterns, path) {
			return
		}
		name := strings.TrimSuffix(strings.TrimPrefix(path, "/"), ".txt")
		s.mu.Lock()
		s.contents[name] = splitLines(r.Body)
		s.mu.Unlock()
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Attr("href")
		if link == "" || strings.HasPrefix(link, "#") || strings.HasPrefix(link, "javascript:") {
			return
		}
		abs := e.Request.AbsoluteURL(link)
		if abs == "" {
			return
		}
		_ = e.Request.Visit(abs)
	})

	c.OnError(func(r *colly.Response, err error) {
		log.Printf("Warning: wildcard crawl fetch failed for %s: %v", r.Request.URL, err)
	})

	if err := c.Visit(s.config.StartURL); err != nil {
		return fmt.Errorf("crawling wildcard source %s: %w", s.config.StartURL, err)
	}
	c.Wait()

	s.mu.Lock()
	s.crawled = true
	s.mu.Unlock()
	return nil
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if matched, err := doublestar.Match(p, strings.TrimPrefix(path, "/")); err == nil && matched {
			return true
		}
	}
	return false
}

