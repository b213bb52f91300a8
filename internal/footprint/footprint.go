package footprint

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/bool64/ctxd"
)

// DefaultInterval is the default interval between two reports.
const DefaultInterval = time.Second

// Probe returns the key-value pairs added to every report.
type Probe func() []any

// Track tracks the resources usage and the probes and writes them to log at debug level, until the context is done.
func Track(ctx context.Context, log ctxd.Logger, interval time.Duration, probes ...Probe) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			log.Debug(ctx, "footprint", Fields(probes...)...)
		}
	}
}

// Fields returns the memory usage followed by the fields of the probes.
func Fields(probes ...Probe) []any {
	// See: https://golang.org/pkg/runtime/#MemStats
	var m runtime.MemStats

	runtime.ReadMemStats(&m)

	fields := []any{
		"alloc_mb", formatB(m.Alloc),
		"total_alloc_mb", formatB(m.TotalAlloc),
		"sys_mb", formatB(m.Sys),
		"num_gc", m.NumGC,
		"num_goroutine", runtime.NumGoroutine(),
	}

	for _, p := range probes {
		fields = append(fields, p()...)
	}

	return fields
}

func formatB(b uint64) string {
	return fmt.Sprintf("%dMiB", b/1024/1024) // nolint: gomnd // bytes conversion.
}
