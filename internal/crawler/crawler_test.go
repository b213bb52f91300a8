package crawler_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhatthm/brokenlinks/internal/crawler"
)

var executionTime = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return executionTime
}

func sendLinks(links ...string) <-chan string {
	ch := make(chan string)

	go func() {
		defer close(ch)

		for _, link := range links {
			ch <- link
		}
	}()

	return ch
}

func contextWithDeadline(t *testing.T, d time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()

	deadline, ok := t.Deadline()
	if !ok {
		deadline = time.Now().Add(d)
	}

	return context.WithDeadline(context.Background(), deadline)
}

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// fakePage is a page served by fakeSite.
type fakePage struct {
	status int
	body   string
	// headErr and getErr fail the request instead of responding.
	headErr error
	getErr  error
}

// fakeSite is a transport serving pages by their full url. Unknown urls respond with not found.
type fakeSite struct {
	pages map[string]fakePage
	// onRequest is called before responding, with the method and the full url of the request.
	onRequest func(method, url string)

	mu       sync.Mutex
	requests []string
}

func (s *fakeSite) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	target := req.URL.String()

	s.mu.Lock()
	s.requests = append(s.requests, req.Method+" "+target)
	s.mu.Unlock()

	if s.onRequest != nil {
		s.onRequest(req.Method, target)
	}

	p, ok := s.pages[target]
	if !ok {
		p = fakePage{status: http.StatusNotFound}
	}

	if req.Method == http.MethodHead && p.headErr != nil {
		return nil, p.headErr
	}

	if req.Method == http.MethodGet && p.getErr != nil {
		return nil, p.getErr
	}

	status := p.status
	if status == 0 {
		status = http.StatusOK
	}

	body := p.body
	if req.Method == http.MethodHead {
		body = ""
	}

	return &http.Response{
		Status:     http.StatusText(status),
		StatusCode: status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{"Content-Type": []string{"text/html"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func (s *fakeSite) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]string, len(s.requests))
	copy(result, s.requests)

	return result
}

func visitedURLs(visits []crawler.Visit) []string {
	result := make([]string, 0, len(visits))

	for _, v := range visits {
		result = append(result, v.URL)
	}

	return result
}

func assertAuditResult(t *testing.T, results <-chan crawler.AuditResult, timeout time.Duration, expected crawler.AuditResult) {
	t.Helper()

	ctx, cancel := contextWithDeadline(t, timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		t.Errorf("test timed out")

	case actual := <-results:
		assert.Equal(t, expected, actual)
	}
}

func assertAuditError(t *testing.T, results <-chan crawler.AuditResult, timeout time.Duration, source string, errMsg string) {
	t.Helper()

	ctx, cancel := contextWithDeadline(t, timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		t.Errorf("test timed out")

	case actual := <-results:
		assert.Equal(t, source, actual.Source)
		assert.Nil(t, actual.Report)
		assert.EqualError(t, actual.Error, errMsg)
	}
}
