package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bool64/ctxd"
)

// checkStatus sends a HEAD request and returns the status of the final response.
//
// Any response is a valid status, including the error-class ones. When the request cannot be completed, the status is unreachable.
func (c *SiteCrawler) checkStatus(ctx context.Context, target string) Status {
	resp, err := c.doRequest(ctx, http.MethodHead, target)
	if err != nil {
		return Unreachable(err)
	}

	_ = resp.Body.Close() // nolint: errcheck

	return StatusCode(resp.StatusCode)
}

// fetchDocument sends a GET request and returns the body of the response.
//
// A failure is not reported to the caller, it only means that there is nothing to follow. The body is nil when the request cannot
// be completed, when the final response is not successful, or when the body cannot be read.
func (c *SiteCrawler) fetchDocument(ctx context.Context, target string) []byte {
	resp, err := c.doRequest(ctx, http.MethodGet, target)
	if err != nil {
		return nil
	}

	defer resp.Body.Close() // nolint: errcheck

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Debug(ctx, "skip document of unsuccessful response", "http.status_code", resp.StatusCode)

		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		c.log.Error(ctx, "failed to read document", "error", err)

		return nil
	}

	c.log.Debug(ctx, "retrieved document", "http.body_size", len(body))

	return body
}

func (c *SiteCrawler) doRequest(ctx context.Context, method, target string) (*http.Response, error) {
	ctx = ctxd.AddFields(ctx,
		"http.method", method,
		"http.timeout", c.client.Timeout.String(),
	)

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		c.log.Error(ctx, "failed to create http request", "error", err)

		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	c.log.Debug(ctx, "send http request",
		"http.user_agent", c.userAgent,
	)

	startTime := time.Now()
	resp, err := c.client.Do(req)
	endTime := time.Now()

	if err != nil {
		c.log.Error(ctx, "failed to send http request", "error", err)

		return nil, fmt.Errorf("failed to send http request: %w", err)
	}

	c.log.Debug(ctx, "received http response",
		"http.status_code", resp.StatusCode,
		"http.duration", endTime.Sub(startTime).String(),
	)

	return resp, nil
}
