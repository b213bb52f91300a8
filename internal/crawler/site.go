package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bool64/ctxd"

	"github.com/nhatthm/brokenlinks/internal/collector"
)

const (
	// DefaultMaxDepth is the default max depth of a crawl.
	DefaultMaxDepth = 4

	// defaultTimeout is the default timeout for requesting an url.
	defaultTimeout = 10 * time.Second
	// defaultMaxBodySize is the default number of bytes read from a document.
	defaultMaxBodySize = 10 << 20

	// defaultUserAgent is the default user agent to disguise.
	defaultUserAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/99.0.4844.51 Safari/537.36`
)

// frame is a pending step of the walk.
type frame struct {
	url   string
	depth int
}

// SiteCrawler walks a site from a seed url and reports the urls that respond with not found.
//
// The walk is depth-first and pre-order: a url is checked before its children are explored, and a child subtree is fully explored
// before the next sibling. Only the links whose host equals the host of the seed are followed. A url is checked with a HEAD request,
// and when it is above the max depth, its document is retrieved with a GET request to discover the next links.
//
// A SiteCrawler is not safe for concurrent use and can only run once.
type SiteCrawler struct {
	client    *http.Client
	collector collector.LinkCollector
	log       ctxd.Logger
	now       func() time.Time

	// userAgent is the user agent to disguise when sending request to server. Default value is defaultUserAgent.
	userAgent string
	// maxBodySize is the maximum number of bytes read from a document. Default value is defaultMaxBodySize.
	maxBodySize int64

	baseURL  string
	maxDepth int
	domain   string

	visited      map[string]struct{}
	visits       []Visit
	broken       []string
	totalVisited int
	started      bool
}

// Run crawls the site and returns the report.
//
// If the context is canceled, the walk stops and Run returns the report of what has been visited so far along with
// ErrOperationCanceled.
func (c *SiteCrawler) Run(ctx context.Context) (*Report, error) {
	if c.started {
		return nil, ErrCrawlerReused
	}

	c.started = true

	ctx = ctxd.AddFields(ctx,
		"crawler.site.base_url", c.baseURL,
		"crawler.site.max_depth", c.maxDepth,
	)

	startTime := time.Now()

	c.log.Info(ctx, "started site crawl")

	err := c.walk(ctx)

	c.log.Info(ctx, "finished site crawl",
		"crawler.site.total_visited", c.totalVisited,
		"crawler.site.total_broken", len(c.broken),
		"crawler.site.duration", time.Since(startTime).String(),
	)

	return c.report(), err
}

// walk drives the traversal with an explicit stack.
//
// The children of a url are pushed in reverse order, so they are popped in document order, and the children of a child are popped
// before its next sibling. The visited gate is evaluated when a frame is popped, which is the order of a recursive walk.
func (c *SiteCrawler) walk(ctx context.Context) error {
	stack := []frame{{url: c.baseURL, depth: 0}}

	for len(stack) > 0 && ctx.Err() == nil {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children := c.visit(ctx, f)

		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{url: children[i], depth: f.depth + 1})
		}
	}

	// The last visit may have been cut short too.
	if ctx.Err() != nil {
		c.log.Warn(ctx, "site crawl canceled", "crawler.site.pending", len(stack))

		return ErrOperationCanceled
	}

	return nil
}

// visit checks a url and returns the internal links to follow.
func (c *SiteCrawler) visit(ctx context.Context, f frame) []string {
	if f.depth > c.maxDepth {
		return nil
	}

	if _, ok := c.visited[f.url]; ok {
		return nil
	}

	c.visited[f.url] = struct{}{}
	c.totalVisited++

	ctx = ctxd.AddFields(ctx, "crawler.site.url", f.url, "crawler.site.depth", f.depth)

	c.log.Info(ctx, "processing url", "crawler.site.total_visited", c.totalVisited)

	v := Visit{URL: f.url, Depth: f.depth}

	defer func() {
		c.visits = append(c.visits, v)
	}()

	v.Status = c.checkStatus(ctx, f.url)

	if v.Status.IsNotFound() {
		c.broken = append(c.broken, f.url)

		c.log.Warn(ctx, "broken link found", "http.status_code", http.StatusNotFound)
	}

	if f.depth == c.maxDepth {
		return nil
	}

	doc := c.fetchDocument(ctx, f.url)
	if len(doc) == 0 {
		return nil
	}

	links, err := c.collector.GetLinks(bytes.NewReader(doc))
	if err != nil {
		c.log.Error(ctx, "failed to get links", "error", err)

		return nil
	}

	v.Expanded = true

	return c.internalLinks(ctx, f.url, links)
}

// internalLinks resolves the links against the page and keeps the ones on the domain, in the same order.
//
// For example: given a `http://localhost/page` page
//   - link: .
//     result: http://localhost/
//   - link: /absolute/path
//     result: http://localhost/absolute/path
//   - link: path#anchor
//     result: http://localhost/path#anchor
//   - link: https://example.org/
//     result: dropped
func (c *SiteCrawler) internalLinks(ctx context.Context, page string, links []string) []string {
	pageURL, err := url.Parse(page)
	if err != nil {
		// The page url was already requested, so this should not happen.
		c.log.Error(ctx, "failed to parse page url", "error", err)

		return nil
	}

	result := make([]string, 0, len(links))

	for _, link := range links {
		abs, ok := c.isInternal(pageURL, link)
		if !ok {
			c.log.Debug(ctx, "skip link", "link", link)

			continue
		}

		result = append(result, abs)
	}

	c.log.Debug(ctx, "collected links",
		"crawler.site.num_links", len(links),
		"crawler.site.num_internal_links", len(result),
	)

	return result
}

// isInternal resolves the link against the page and tells whether the host of the absolute url is the domain of the crawl.
//
// The host is compared as it is, including the port and without case folding. The userinfo is not part of the host, so
// https://user@example.org/x and https://example.org/x are both internal to a crawl of https://example.org/, whereas a
// comparison of the whole authority (netloc) would tell them apart.
func (c *SiteCrawler) isInternal(page *url.URL, link string) (string, bool) {
	linkURL, err := url.Parse(link)
	if err != nil {
		return "", false
	}

	abs := page.ResolveReference(linkURL)

	return abs.String(), abs.Host == c.domain
}

// report builds the report from the current state.
func (c *SiteCrawler) report() *Report {
	broken := make([]string, len(c.broken))
	copy(broken, c.broken)

	return &Report{
		BaseURL:            c.baseURL,
		ExecutionTimestamp: c.now(),
		MaxDepth:           c.maxDepth,
		TotalLinksChecked:  c.totalVisited,
		TotalBrokenLinks:   len(broken),
		BrokenLinks:        broken,
	}
}

// Visits returns the visited urls in the order they were visited.
func (c *SiteCrawler) Visits() []Visit {
	result := make([]Visit, len(c.visits))
	copy(result, c.visits)

	return result
}

// NewSiteCrawler creates a new SiteCrawler for the seed url.
//
// The seed must be an absolute http or https url. The max depth is the number of links followed from the seed, a max depth of 0
// only checks the seed.
//
// Usage:
//
//	c, err := NewSiteCrawler("https://example.org/", 4, WithClientTimeout(5*time.Second))
//	if err != nil {
//		return err
//	}
//
//	r, err := c.Run(ctx)
func NewSiteCrawler(baseURL string, maxDepth int, opts ...SiteCrawlerOption) (*SiteCrawler, error) {
	u, err := parseURL(baseURL)
	if err != nil {
		return nil, err
	}

	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeDepth, maxDepth)
	}

	c := &SiteCrawler{
		client:    &http.Client{}, // Default HTTP Client.
		collector: collector.NewHTMLLinkCollector(),
		log:       ctxd.NoOpLogger{},
		now:       time.Now,

		userAgent:   defaultUserAgent,
		maxBodySize: defaultMaxBodySize,

		baseURL:  baseURL,
		maxDepth: maxDepth,
		domain:   u.Host,

		visited: make(map[string]struct{}),
		broken:  make([]string, 0),
	}

	for _, opt := range opts {
		opt.applySiteCrawlerOption(c)
	}

	if c.client.Timeout <= 0 {
		c.client.Timeout = defaultTimeout
	}

	if c.maxBodySize <= 0 {
		c.maxBodySize = defaultMaxBodySize
	}

	return c, nil
}

// parseURL parses the url string into an url.URL.
//
// - If the url string is not a valid url, it will return an error.
// - If the url string does not start with http and https, it will return an error.
// - If the url string does not have a hostname, it will return an error.
func parseURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err // nolint: wrapcheck // *url.URL error is meaningful, we do not need to wrap it.
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse %q: %w %q", s, ErrUnsupportedScheme, u.Scheme)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("parse %q: %w", s, ErrMissingHostname)
	}

	return u, nil
}
