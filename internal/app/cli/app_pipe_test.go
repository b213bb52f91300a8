//go:build !windows && !testsignal

// This test required a piped stdin, we cannot do that with windows.

package cli_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/nhatthm/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/nhatthm/brokenlinks/internal/app/cli"
)

func Test_Run_InputPipe_Success(t *testing.T) {
	t.Parallel()

	srv := httpmock.New(func(s *httpmock.Server) {
		s.ExpectHead("/path1").
			ReturnCode(200)
	})(t)

	pipeFile := filepath.Clean(t.TempDir() + "/pipe")

	// Create a pipe.
	if err := syscall.Mkfifo(pipeFile, 0o666); err != nil {
		t.Fatalf("could not create pipe: %v", err)

		return
	}

	// Write to pipe.
	go func() {
		f, err := os.OpenFile(pipeFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o777) // nolint: gosec
		if err != nil {
			t.Errorf("could not open pipe for writing: %v", err)

			return
		}

		defer func() {
			_ = f.Close() // nolint: errcheck
		}()

		err = os.WriteFile(pipeFile, []byte(srv.URL()+"/path1"), 0o644) // nolint: gosec
		if err != nil {
			t.Errorf("could not write pipe data: %v", err)

			return
		}
	}()

	// Open pipe.
	f, err := os.OpenFile(pipeFile, os.O_CREATE, os.ModeNamedPipe)
	if err != nil {
		t.Errorf("could not open pipe: %v", err)

		return
	}

	defer func() {
		_ = f.Close() // nolint: errcheck
	}()

	outBuf := new(safeBuffer)
	errBuf := new(safeBuffer)

	code := cli.Run(cli.Config{
		OutWriter:  outBuf,
		ErrWriter:  errBuf,
		NumWorkers: 1,
		Clock:      fixedClock,
	}, f)

	expected := "[" + fmt.Sprintf(okResultTmpl, srv.URL()+"/path1") + "]"

	assert.Equal(t, expected, strings.Trim(outBuf.String(), "\n"))
	assert.Empty(t, errBuf.String())
	assert.Equal(t, cli.CodeOK, code)
}
