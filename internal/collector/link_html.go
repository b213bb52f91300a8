package collector

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"
)

var _ LinkCollector = (*HTMLLinkCollector)(nil)

// HTMLLinkCollector is a collector that collects the raw link targets from a reader of an HTML document.
//
// The links are returned as they are written in the document, they are neither validated nor resolved. Attributes with an empty
// value are skipped, and an anchor with several href attributes gives one link for each of them. Malformed markup is tolerated, the collector extracts whatever anchors the tokenizer recognizes.
//
//	c := NewHTMLLinkCollector()
//	links, err := c.GetLinks(r)
//	if err != nil {
//		return nil, err
//	}
//
//	fmt.Println(links)
type HTMLLinkCollector struct {
	tagAttributes map[string]string // Key is tag name, Value is attribute name.
}

// GetLinks collects links from a reader of an HTML document.
//
// The only error is a failure of the reader itself.
func (c HTMLLinkCollector) GetLinks(r io.Reader) ([]string, error) {
	z := html.NewTokenizer(r)
	links := make([]string, 0, initialLinksCapacity)

process:
	for {
		switch tt := z.Next(); tt { // nolint: exhaustive // We ignore the other tokens because we focus on the tag attributes.
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				break process
			}

			return nil, fmt.Errorf("could not collect links from html doc: %w", z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			tag := z.Token()

			wantAttr, ok := c.tagAttributes[tag.Data]
			if !ok {
				continue
			}

			// A repeated attribute yields one link per non-empty value.
			for _, attr := range tag.Attr {
				if attr.Key == wantAttr && attr.Val != "" {
					links = append(links, attr.Val)
				}
			}
		}
	}

	// Reduce memory allocation. GC will clean up the old links slice.
	result := make([]string, len(links))
	copy(result, links)

	return result, nil
}

// NewHTMLLinkCollector creates a new collector for collecting the href of the anchors in an HTML document.
func NewHTMLLinkCollector() *HTMLLinkCollector {
	return &HTMLLinkCollector{
		tagAttributes: map[string]string{
			"a": "href",
		},
	}
}
