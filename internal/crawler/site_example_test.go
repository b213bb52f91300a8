//go:build !testsignal

package crawler_test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhatthm/httpmock"

	"github.com/nhatthm/brokenlinks/internal/crawler"
)

func ExampleNewSiteCrawler() {
	srv := httpmock.MockServer(func(s *httpmock.Server) {
		s.ExpectHead("/").
			ReturnCode(httpmock.StatusOK)

		s.ExpectGet("/").
			ReturnHeader("Content-Type", "text/html").
			Return([]byte(`
				<a href="docs/">documentation</a>
				<a href="/missing.html">missing</a>
				<a href="https://example.com">external</a>
			`))

		s.ExpectHead("/docs/").
			ReturnCode(httpmock.StatusOK)

		s.ExpectHead("/missing.html").
			ReturnCode(httpmock.StatusNotFound)
	})

	c, err := crawler.NewSiteCrawler(srv.URL()+"/", 1, crawler.WithClientTimeout(time.Second))
	if err != nil {
		panic(err)
	}

	r, err := c.Run(context.Background())
	if err != nil {
		panic(err)
	}

	replacer := strings.NewReplacer(srv.URL(), "http://site")

	fmt.Printf("total links checked: %d\n", r.TotalLinksChecked)

	for _, link := range r.BrokenLinks {
		fmt.Printf("broken link: %s\n", replacer.Replace(link))
	}

	// Output:
	// total links checked: 3
	// broken link: http://site/missing.html
}
