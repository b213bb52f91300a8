package crawler

var _ error = (*Error)(nil)

const (
	// ErrOperationCanceled indicates that the operation was canceled.
	ErrOperationCanceled = Error("operation canceled")
	// ErrMissingHostname indicates that the seed url is missing hostname.
	ErrMissingHostname = Error("missing hostname")
	// ErrUnsupportedScheme indicates that the seed url contains an unsupported scheme.
	ErrUnsupportedScheme = Error("unsupported scheme")
	// ErrNegativeDepth indicates that the max depth is negative.
	ErrNegativeDepth = Error("max depth must not be negative")
	// ErrUnknownStatus is the cause of an unreachable status created without an error.
	ErrUnknownStatus = Error("unknown status")
	// ErrCrawlerReused indicates that a site crawler is run more than once.
	ErrCrawlerReused = Error("site crawler can only run once")
)

// Error is a crawler error.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
