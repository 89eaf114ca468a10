// Package task runs external operational commands with a wall-clock
// timeout and an output-size cap. Timeouts, non-zero exits, and output
// overflow are all reported as failures carrying whatever output was
// captured; nothing is retried, and a started task cannot be cancelled
// other than by its timeout.
package task

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes commands in Dir. The zero value is not usable; fill in
// Timeout and MaxOutput.
type Runner struct {
	Dir       string
	Timeout   time.Duration
	MaxOutput int64 // per stream, bytes
}

// cappedBuffer collects up to max bytes and remembers whether more arrived.
type cappedBuffer struct {
	buf      bytes.Buffer
	max      int64
	overflow bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	remaining := b.max - int64(b.buf.Len())
	if remaining <= 0 {
		b.overflow = b.overflow || len(p) > 0
		return len(p), nil
	}
	if int64(len(p)) > remaining {
		b.buf.Write(p[:remaining])
		b.overflow = true
		return len(p), nil
	}
	b.buf.Write(p)
	return len(p), nil
}

// Run executes name with args and returns the captured output. err is
// non-nil on non-zero exit, timeout, or output overflow; stdout and
// stderr carry whatever was captured either way.
func (r Runner) Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	max := r.MaxOutput
	if max <= 0 {
		max = 5 << 20
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	outBuf := &cappedBuffer{max: max}
	errBuf := &cappedBuffer{max: max}
	cmd.Stdout = outBuf
	cmd.Stderr = errBuf

	runErr := cmd.Run()
	stdout = strings.TrimSpace(outBuf.buf.String())
	stderr = strings.TrimSpace(errBuf.buf.String())

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		return stdout, stderr, fmt.Errorf("%s timed out after %s", name, timeout)
	case outBuf.overflow || errBuf.overflow:
		return stdout, stderr, fmt.Errorf("%s produced more than %d bytes of output", name, max)
	case runErr != nil:
		return stdout, stderr, fmt.Errorf("%s: %w", name, runErr)
	}
	return stdout, stderr, nil
}
