package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

// outputTailLimit bounds how much captured diagnostic output is kept for
// error payloads.
const outputTailLimit = 8 * 1024

// terminateGrace is how long a cancelled process gets to exit after SIGTERM
// before it is killed.
const terminateGrace = 5 * time.Second

// ExecError is a non-zero exit (or missing output) from the external tool,
// carrying the captured diagnostic text.
type ExecError struct {
	ExitCode int
	Output   string
	// PermissionDenied is set when the output indicates a sandbox or
	// filesystem permission problem rather than a format one.
	PermissionDenied bool
}

func (e *ExecError) Error() string {
	if e.PermissionDenied {
		return fmt.Sprintf("external transcoder was denied file access (exit %d)", e.ExitCode)
	}
	return fmt.Sprintf("external transcoder exited with code %d", e.ExitCode)
}

// Runner executes conversion invocations of the external tool. Progress is
// parsed from stdout (the -progress stream); diagnostics are captured from
// stderr and also sniffed for the duration banner when the caller did not
// probe one.
type Runner struct {
	binaryPath string
}

// NewRunner creates a Runner for a resolved binary path.
func NewRunner(binaryPath string) *Runner {
	return &Runner{binaryPath: binaryPath}
}

// Run invokes the tool and blocks until it exits or ctx is cancelled.
// onProgress, if non-nil, receives non-decreasing fractions in [0,1].
// durationUS is the probed source duration; pass 0 to rely on banner
// sniffing. Cancellation sends SIGTERM, then kills after a grace period,
// and is reported as ctx.Err().
func (r *Runner) Run(ctx context.Context, args []string, durationUS int64, onProgress func(float64)) error {
	cmd := exec.CommandContext(ctx, r.binaryPath, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = terminateGrace

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting external transcoder: %w", err)
	}

	parser := NewProgressParser(durationUS)
	var parserMu sync.Mutex
	var tail strings.Builder

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		consumeLines(stdout, func(line string) {
			parserMu.Lock()
			fraction, changed := parser.ParseLine(line)
			parserMu.Unlock()
			if changed && onProgress != nil {
				onProgress(fraction)
			}
		})
	}()

	go func() {
		defer wg.Done()
		consumeLines(stderr, func(line string) {
			parserMu.Lock()
			parser.ParseLine(line)
			parserMu.Unlock()
			appendTail(&tail, line)
		})
	}()

	wg.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if waitErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		output := tail.String()
		return &ExecError{
			ExitCode:         exitCode,
			Output:           output,
			PermissionDenied: sniffsPermissionDenied(output),
		}
	}

	if onProgress != nil {
		parserMu.Lock()
		ended := parser.Ended()
		parserMu.Unlock()
		if !ended {
			onProgress(1)
		}
	}
	return nil
}

// consumeLines drains a pipe through a LineDecoder, including the trailing
// partial line at EOF.
func consumeLines(pipe io.Reader, handle func(string)) {
	decoder := &LineDecoder{}
	buf := make([]byte, 4096)
	for {
		n, err := pipe.Read(buf)
		if n > 0 {
			for _, line := range decoder.Add(buf[:n]) {
				handle(line)
			}
		}
		if err != nil {
			if last := decoder.Flush(); last != "" {
				handle(last)
			}
			return
		}
	}
}

func appendTail(tail *strings.Builder, line string) {
	if tail.Len() >= outputTailLimit {
		return
	}
	tail.WriteString(line)
	tail.WriteByte('\n')
}

func sniffsPermissionDenied(output string) bool {
	lower := strings.ToLower(output)
	return strings.Contains(lower, "permission denied") ||
		strings.Contains(lower, "operation not permitted")
}
