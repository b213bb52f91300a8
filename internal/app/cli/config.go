package cli

import (
	"io"
	"time"
)

// VerbosityLevel is the verbosity level of the application.
type VerbosityLevel uint

const (
	// VerbosityLevelSilent is the silent verbosity level.
	VerbosityLevelSilent VerbosityLevel = iota
	// VerbosityLevelError is the error verbosity level.
	VerbosityLevelError
	// VerbosityLevelInfo is the info verbosity level, it shows the crawl progress and the broken links.
	VerbosityLevelInfo
	// VerbosityLevelDebug is the debug verbosity level.
	VerbosityLevelDebug
)

// Config is the configuration of the application.
type Config struct {
	OutWriter io.Writer // The stream that will receive the results
	ErrWriter io.Writer // The stream that will receive all the log messages and errors.

	NumWorkers     int            // The number of sites that could be audited in parallel.
	MaxDepth       int            // The number of links followed from a seed.
	Timeout        time.Duration  // The timeout of every http request.
	UserAgent      string         // The user agent of every http request, empty for the default one.
	PrettyOutput   bool           // Enable JSON prettifier.
	ReportDir      string         // The directory of the report files, empty to disable the files.
	VerbosityLevel VerbosityLevel // The verbosity level of the tool.
	LogJSON        bool           // Write the log messages as JSON lines.

	Clock func() time.Time // The clock used to timestamp the reports. Default to time.Now.
}
