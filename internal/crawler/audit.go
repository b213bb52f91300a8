package crawler

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bool64/ctxd"
)

const (
	// defaultNumWorkers is the default value for number of workers.
	defaultNumWorkers = 10
	// maxNumWorkers is the limitation for number of workers to avoid resource saturation.
	maxNumWorkers = 24
)

// AuditResult is the result of a site audit.
type AuditResult struct {
	Source string
	// Report is nil when the crawl could not start. It is partial when the audit was canceled.
	Report *Report
	Error  error
}

// AuditProgress is the progress of the auditor.
type AuditProgress struct {
	Started  int64
	Finished int64
}

// SiteAuditor audits sites from multiple seeds.
type SiteAuditor interface {
	AuditSites(ctx context.Context, sources <-chan string) <-chan AuditResult
}

var _ SiteAuditor = (*HTTPSiteAuditor)(nil)

// HTTPSiteAuditor runs a SiteCrawler for every seed.
//
// Each site is crawled sequentially by one worker, the workers only overlap on different sites.
type HTTPSiteAuditor struct {
	log         ctxd.Logger
	crawlerOpts []SiteCrawlerOption

	// numWorkers is the number of sites audited in parallel. Default value is defaultNumWorkers.
	numWorkers int
	// maxDepth is the max depth of every crawl. Default value is DefaultMaxDepth.
	maxDepth int

	started  atomic.Int64
	finished atomic.Int64
}

// AuditSites audits the sites from the seeds.
//
// The auditor will spawn a number of workers and close the result channel when all the workers are done. In order to stop the
// auditor, the caller should cancel the context. The crawls in progress then stop and their partial reports are sent with
// ErrOperationCanceled.
//
// See https://pkg.go.dev/context#WithCancel.
func (a *HTTPSiteAuditor) AuditSites(ctx context.Context, sources <-chan string) <-chan AuditResult {
	results := make(chan AuditResult)
	wg := sync.WaitGroup{}

	wg.Add(a.numWorkers)

	for i := 0; i < a.numWorkers; i++ {
		ctx := ctxd.AddFields(ctx, "crawler.audit.worker_id", i)

		go func(ctx context.Context) {
			defer wg.Done()

			a.log.Debug(ctx, "started crawler.audit worker")

			for {
				select {
				// Operation canceled.
				case <-ctx.Done():
					a.log.Debug(ctx, "stopped crawler.audit worker")

					return

				case source, ok := <-sources:
					if !ok {
						return
					}

					results <- a.audit(ctx, source)
				}
			}
		}(ctx)
	}

	// Wait for all workers to finish and close the results channel.
	go func() {
		wg.Wait()
		close(results)

		a.log.Debug(ctx, "stopped all crawler.audit workers")
	}()

	return results
}

// audit crawls one site.
func (a *HTTPSiteAuditor) audit(ctx context.Context, source string) AuditResult {
	a.started.Add(1)
	defer a.finished.Add(1)

	startTime := time.Now()
	ctx = ctxd.AddFields(ctx, "crawler.audit.source", source)

	a.log.Debug(ctx, "started auditing")

	defer func() {
		a.log.Debug(ctx, "finished auditing", "crawler.audit.duration", time.Since(startTime).String())
	}()

	result := AuditResult{Source: source}

	c, err := NewSiteCrawler(normalizeSeed(source), a.maxDepth, a.crawlerOpts...)
	if err != nil {
		a.log.Error(ctx, "failed to create site crawler", "error", err)

		result.Error = err

		return result
	}

	result.Report, result.Error = c.Run(ctx)

	return result
}

// Progress returns the number of started and finished audits.
func (a *HTTPSiteAuditor) Progress() AuditProgress {
	return AuditProgress{
		Started:  a.started.Load(),
		Finished: a.finished.Load(),
	}
}

// NewHTTPSiteAuditor creates a new HTTPSiteAuditor.
//
// Usage:
//
//	seeds := make(chan string)
//
//	go func() {
//		defer close(seeds)
//
//		for _, seed := range []string{"example.org", "https://example.com/docs/"} {
//			seeds <- seed
//		}
//	}()
//
//	a := NewHTTPSiteAuditor(WithMaxDepth(2), WithNumWorkers(2))
//
//	for r := range a.AuditSites(ctx, seeds) {
//		fmt.Printf("source: %s\nnum broken links: %d\n", r.Source, r.Report.TotalBrokenLinks)
//	}
func NewHTTPSiteAuditor(opts ...SiteAuditorOption) *HTTPSiteAuditor {
	a := &HTTPSiteAuditor{
		log: ctxd.NoOpLogger{},

		numWorkers: defaultNumWorkers,
		maxDepth:   DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt.applySiteAuditorOption(a)
	}

	// Safeguard the number of workers.
	if a.numWorkers < 1 {
		a.numWorkers = defaultNumWorkers
	} else if a.numWorkers > maxNumWorkers {
		a.numWorkers = maxNumWorkers
	}

	return a
}

// normalizeSeed adds the https scheme to a seed that has none, the seed is otherwise kept as it is.
func normalizeSeed(s string) string {
	s = strings.TrimSpace(s)

	if s != "" && !strings.Contains(s, "://") {
		return "https://" + s
	}

	return s
}
