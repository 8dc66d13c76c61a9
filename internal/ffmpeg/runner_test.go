package ffmpeg

import (
	"context"
	"errors"
	"testing"
	"time"
)

// sh returns a Runner that executes a shell script, standing in for the
// external tool in tests.
func sh() *Runner {
	return NewRunner("/bin/sh")
}

func TestRunnerParsesProgress(t *testing.T) {
	script := `printf 'out_time_us=250000\nprogress=continue\nout_time_us=500000\nprogress=end\n'`

	var fractions []float64
	err := sh().Run(context.Background(), []string{"-c", script}, 1_000_000, func(f float64) {
		fractions = append(fractions, f)
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(fractions) == 0 {
		t.Fatal("no progress callbacks")
	}
	last := fractions[len(fractions)-1]
	if last != 1 {
		t.Errorf("final fraction = %v, want 1", last)
	}
	for i := 1; i < len(fractions); i++ {
		if fractions[i] < fractions[i-1] {
			t.Errorf("progress regressed: %v", fractions)
		}
	}
}

func TestRunnerForcesCompletionWithoutEndMarker(t *testing.T) {
	var last float64
	err := sh().Run(context.Background(), []string{"-c", "exit 0"}, 0, func(f float64) {
		last = f
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if last != 1 {
		t.Errorf("final fraction = %v, want forced 1 on clean exit", last)
	}
}

func TestRunnerExitError(t *testing.T) {
	script := `echo 'movie.mkv: Invalid data found when processing input' >&2; exit 1`

	err := sh().Run(context.Background(), []string{"-c", script}, 0, nil)
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("Run() error = %v, want *ExecError", err)
	}
	if execErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", execErr.ExitCode)
	}
	if execErr.Output == "" {
		t.Error("expected captured diagnostic output")
	}
	if execErr.PermissionDenied {
		t.Error("PermissionDenied = true for a format error")
	}
}

func TestRunnerSniffsPermissionDenied(t *testing.T) {
	script := `echo '/out/file.mp4: Permission denied' >&2; exit 1`

	err := sh().Run(context.Background(), []string{"-c", script}, 0, nil)
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("Run() error = %v, want *ExecError", err)
	}
	if !execErr.PermissionDenied {
		t.Error("PermissionDenied = false, want sniffed true")
	}
}

func TestRunnerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := sh().Run(ctx, []string{"-c", "sleep 30"}, 0, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("cancellation took %v, process not terminated promptly", elapsed)
	}
}
