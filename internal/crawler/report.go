package crawler

import "time"

// Report is the result of a site crawl.
//
// nolint: tagliatelle
type Report struct {
	BaseURL            string    `json:"base_url"`
	ExecutionTimestamp time.Time `json:"execution_timestamp"`
	MaxDepth           int       `json:"max_depth"`
	TotalLinksChecked  int       `json:"total_links_checked"`
	TotalBrokenLinks   int       `json:"total_broken_links"`
	BrokenLinks        []string  `json:"broken_links"`
}

// Visit is the trace of a visited url.
type Visit struct {
	URL    string
	Depth  int
	Status Status
	// Expanded tells whether the document was retrieved and its links were followed.
	Expanded bool
}

// Broken tells whether the url responded with not found.
func (v Visit) Broken() bool {
	return v.Status.IsNotFound()
}
