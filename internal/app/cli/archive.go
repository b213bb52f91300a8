package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/bool64/ctxd"

	"github.com/nhatthm/brokenlinks/internal/crawler"
)

const (
	reportTimeLayout = "2006-01-02_15-04-05"
	// maxReportFileSuffix limits the number of reports of a host in the same second.
	maxReportFileSuffix = 1000
)

// siteResult is the output of an audit.
//
// nolint: tagliatelle
type siteResult struct {
	Source string `json:"source"`
	// The report fields are omitted when the site could not be crawled.
	*crawler.Report
	ReportFile *string `json:"report_file"`
	Success    bool    `json:"success"`
	Error      *string `json:"error"`
}

// reportArchiver saves the reports of the audits to files.
type reportArchiver struct {
	dir string
	log ctxd.Logger

	failed atomic.Bool
}

// Archive saves every report and forwards the results for output, in the same order.
//
// A report that cannot be saved is logged and does not stop the process. See Failed.
func (a *reportArchiver) Archive(ctx context.Context, results <-chan crawler.AuditResult) <-chan siteResult {
	out := make(chan siteResult)

	go func() {
		defer close(out)

		for r := range results {
			result := toSiteResult(r)

			if a.dir != "" && r.Report != nil {
				path, err := a.save(r.Report)
				if err != nil {
					a.failed.Store(true)

					a.log.Error(ctx, "could not save report", "source", r.Source, "error", err)
				} else {
					a.log.Info(ctx, "saved report", "source", r.Source, "report_file", path)

					result.ReportFile = &path
				}
			}

			out <- result
		}
	}()

	return out
}

// Failed tells whether a report could not be saved.
func (a *reportArchiver) Failed() bool {
	return a.failed.Load()
}

func (a *reportArchiver) save(r *crawler.Report) (_ string, err error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil { // nolint: gosec
		return "", fmt.Errorf("could not create report directory: %w", err)
	}

	f, path, err := createReportFile(a.dir, r)
	if err != nil {
		return "", err
	}

	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("could not close report file: %w", cErr)
		}
	}()

	enc := json.NewEncoder(f)

	enc.SetIndent("", jsonIndent)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("could not write report file: %w", err)
	}

	return path, nil
}

// createReportFile creates a new report file in the directory and never replaces an existing one.
//
// The reports of the same host that end in the same second share a name, the next ones get a _1, _2, ... suffix.
func createReportFile(dir string, r *crawler.Report) (*os.File, string, error) {
	for n := 0; n < maxReportFileSuffix; n++ {
		path := filepath.Clean(filepath.Join(dir, reportFileName(r, n)))

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) // nolint: gosec
		if err == nil {
			return f, path, nil
		}

		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("could not create report file: %w", err)
		}
	}

	return nil, "", fmt.Errorf("could not create report file: %w: %s", fs.ErrExist, reportFileName(r, maxReportFileSuffix))
}

// reportFileName returns the name of the report file, for example brokenlinks_example.org_2026-10-19_09-30-00.log, or
// brokenlinks_example.org_2026-10-19_09-30-00_2.log when n is 2.
func reportFileName(r *crawler.Report, n int) string {
	host := "site"

	if u, err := url.Parse(r.BaseURL); err == nil && u.Host != "" {
		host = strings.ReplaceAll(u.Host, ":", "_")
	}

	name := fmt.Sprintf("brokenlinks_%s_%s", host, r.ExecutionTimestamp.Format(reportTimeLayout))

	if n > 0 {
		name = fmt.Sprintf("%s_%d", name, n)
	}

	return name + ".log"
}

// toSiteResult converts a crawler.AuditResult to siteResult for output.
func toSiteResult(r crawler.AuditResult) siteResult {
	result := siteResult{
		Source:  r.Source,
		Report:  r.Report,
		Success: r.Error == nil,
	}

	if r.Error != nil {
		err := r.Error.Error()
		result.Error = &err
	}

	return result
}

func newReportArchiver(dir string, log ctxd.Logger) *reportArchiver {
	return &reportArchiver{dir: dir, log: log}
}
