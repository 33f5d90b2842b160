package health

import (
	"fmt"
	"time"

	"github.com/prometheus/procfs"
)

// StartTimeSource returns the start time of the host's top-level process.
type StartTimeSource func() (time.Time, error)

// ProcStartTime reads the start time of pid from the proc filesystem at
// procRoot. PID 1 is the container's top-level process.
func ProcStartTime(procRoot string, pid int) StartTimeSource {
	return func() (time.Time, error) {
		fs, err := procfs.NewFS(procRoot)
		if err != nil {
			return time.Time{}, err
		}
		proc, err := fs.Proc(pid)
		if err != nil {
			return time.Time{}, err
		}
		stat, err := proc.Stat()
		if err != nil {
			return time.Time{}, err
		}
		secs, err := stat.StartTime()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(0, int64(secs*float64(time.Second))), nil
	}
}

// UptimeTracker derives elapsed seconds since the host process started.
type UptimeTracker struct {
	source StartTimeSource
	now    func() time.Time
}

// NewUptimeTracker creates a tracker reading start times from source.
func NewUptimeTracker(source StartTimeSource) *UptimeTracker {
	return &UptimeTracker{source: source, now: time.Now}
}

// Uptime returns elapsed whole seconds. On any read failure it returns 0 and
// an error wrapping ErrUptimeRead; 0 places the host in the startup phase.
func (t *UptimeTracker) Uptime() (int, error) {
	if t.source == nil {
		return 0, fmt.Errorf("%w: no start time source", ErrUptimeRead)
	}
	start, err := t.source()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUptimeRead, err)
	}
	if start.IsZero() {
		return 0, fmt.Errorf("%w: zero start time", ErrUptimeRead)
	}

	elapsed := t.now().Sub(start)
	if elapsed < 0 {
		return 0, nil
	}
	return int(elapsed / time.Second), nil
}
