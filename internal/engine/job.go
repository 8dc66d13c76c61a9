package engine

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"media-convert/internal/mediatypes"
)

// State is a job's position in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateAnalyzing
	StateExportingPrimary
	StateExportingExternal
	StateSucceeded
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAnalyzing:
		return "analyzing"
	case StateExportingPrimary:
		return "exporting-primary"
	case StateExportingExternal:
		return "exporting-external"
	case StateSucceeded:
		return "succeeded"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Job is one conversion in flight. Progress and state are readable from any
// goroutine while Convert runs the job on another.
type Job struct {
	ID         string
	SourcePath string
	Kind       mediatypes.Kind

	// WorkingPath is the job-private temporary output; owned by the job
	// until success hands it to output placement.
	WorkingPath string
	// DestPath is set once the finished file has been placed.
	DestPath string

	progress uint64 // float64 bits
	state    int64

	// onProgress, when set, observes every progress update in addition to
	// the polled Progress value.
	onProgress func(float64)

	cancelMu sync.Mutex
	cancel   context.CancelFunc
}

func newJob(sourcePath string, kind mediatypes.Kind) *Job {
	return &Job{
		ID:         uuid.NewString(),
		SourcePath: sourcePath,
		Kind:       kind,
	}
}

// Progress returns the job's current fraction in [0,1].
func (j *Job) Progress() float64 {
	return math.Float64frombits(atomic.LoadUint64(&j.progress))
}

func (j *Job) setProgress(fraction float64) {
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}
	atomic.StoreUint64(&j.progress, math.Float64bits(fraction))
	if j.onProgress != nil {
		j.onProgress(fraction)
	}
}

// State returns the job's current lifecycle state.
func (j *Job) State() State {
	return State(atomic.LoadInt64(&j.state))
}

func (j *Job) setState(s State) {
	atomic.StoreInt64(&j.state, int64(s))
}

// Cancel requests a cooperative abort. Safe to call from any goroutine and
// more than once.
func (j *Job) Cancel() {
	j.cancelMu.Lock()
	defer j.cancelMu.Unlock()
	if j.cancel != nil {
		j.cancel()
	}
}

func (j *Job) bindCancel(cancel context.CancelFunc) {
	j.cancelMu.Lock()
	defer j.cancelMu.Unlock()
	j.cancel = cancel
}
