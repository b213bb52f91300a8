package cli

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/bool64/ctxd"
)

// sourcePublisher is a function that reads seeds from a source and publishes them to a channel.
type sourcePublisher func(ctx context.Context, source io.Reader) <-chan string

// bufferedSourcePublisher creates a new source publisher that reads seeds from a source and publishes them to a buffered channel.
//
// Blank lines are skipped. The buffer size is double the number of workers. This is a fair balance between resource saturation and
// performance.
func bufferedSourcePublisher(numWorkers int, log ctxd.Logger) sourcePublisher {
	return func(ctx context.Context, source io.Reader) <-chan string {
		bufSize := numWorkers * 2 // nolint: gomnd // Buffer size is double the number of workers.
		seedsCh := make(chan string, bufSize)

		log.Debug(ctx, "started buffered publisher", "buffer_size", bufSize)

		go func() {
			defer close(seedsCh)

			s := bufio.NewScanner(source)

		process:
			for {
				select {
				case <-ctx.Done():
					log.Debug(ctx, "buffered publisher stopped")

					return

				default:
					if !s.Scan() {
						break process
					}

					seed := strings.TrimSpace(s.Text())
					if seed == "" {
						continue
					}

					log.Debug(ctx, "publishing seed", "seed", seed)

					select {
					case <-ctx.Done():
						log.Debug(ctx, "buffered publisher stopped")

						return

					case seedsCh <- seed:
					}
				}
			}

			if err := s.Err(); err != nil {
				log.Error(ctx, "could not read input for publishing", "error", err)
			}
		}()

		return seedsCh
	}
}
