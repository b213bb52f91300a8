package crawler

import (
	"net/http"
	"time"

	"github.com/bool64/ctxd"

	"github.com/nhatthm/brokenlinks/internal/collector"
)

// SiteCrawlerOption is option to set up SiteCrawler.
type SiteCrawlerOption interface {
	applySiteCrawlerOption(c *SiteCrawler)
}

// SiteAuditorOption is option to set up HTTPSiteAuditor.
type SiteAuditorOption interface {
	applySiteAuditorOption(a *HTTPSiteAuditor)
}

// Option is an option for both SiteCrawler and HTTPSiteAuditor. The auditor forwards it to every SiteCrawler it creates.
type Option interface {
	SiteCrawlerOption
	SiteAuditorOption
}

type optionFunc func(c *SiteCrawler)

func (f optionFunc) applySiteCrawlerOption(c *SiteCrawler) {
	f(c)
}

func (f optionFunc) applySiteAuditorOption(a *HTTPSiteAuditor) {
	a.crawlerOpts = append(a.crawlerOpts, f)
}

type siteAuditorOptionFunc func(a *HTTPSiteAuditor)

func (f siteAuditorOptionFunc) applySiteAuditorOption(a *HTTPSiteAuditor) {
	f(a)
}

// WithLogger sets logger.
func WithLogger(l ctxd.Logger) Option {
	return loggerOption{log: l}
}

type loggerOption struct {
	log ctxd.Logger
}

func (o loggerOption) applySiteCrawlerOption(c *SiteCrawler) {
	c.log = o.log
}

// The auditor logs with the same logger as its crawlers.
func (o loggerOption) applySiteAuditorOption(a *HTTPSiteAuditor) {
	a.log = o.log
	a.crawlerOpts = append(a.crawlerOpts, o)
}

// WithClientTimeout sets timeout for every HTTP request. A zero or negative duration falls back to the default timeout.
func WithClientTimeout(d time.Duration) Option {
	return optionFunc(func(c *SiteCrawler) {
		c.client.Timeout = d
	})
}

// WithHTTPTransport sets the transport of the HTTP client.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *SiteCrawler) {
		c.client.Transport = rt
	})
}

// WithUserAgent sets the user agent sent with every request.
func WithUserAgent(userAgent string) Option {
	return optionFunc(func(c *SiteCrawler) {
		c.userAgent = userAgent
	})
}

// WithMaxBodySize limits the number of bytes read from a document.
func WithMaxBodySize(n int64) Option {
	return optionFunc(func(c *SiteCrawler) {
		c.maxBodySize = n
	})
}

// WithLinkCollector sets the collector used to extract links from the documents.
func WithLinkCollector(collector collector.LinkCollector) Option {
	return optionFunc(func(c *SiteCrawler) {
		c.collector = collector
	})
}

// WithClock sets the clock used to timestamp the reports.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *SiteCrawler) {
		c.now = now
	})
}

// WithNumWorkers sets number of sites audited in parallel.
func WithNumWorkers(numWorkers int) SiteAuditorOption {
	return siteAuditorOptionFunc(func(a *HTTPSiteAuditor) {
		a.numWorkers = numWorkers
	})
}

// WithMaxDepth sets the max depth of every site crawl.
func WithMaxDepth(maxDepth int) SiteAuditorOption {
	return siteAuditorOptionFunc(func(a *HTTPSiteAuditor) {
		a.maxDepth = maxDepth
	})
}
