package health

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/prometheus/procfs"
)

// ProcessCheck reports whether any running process matches a pattern.
type ProcessCheck interface {
	Running(ctx context.Context, pattern *regexp.Regexp) (bool, error)
}

// ProcfsProcessCheck scans the process table through procfs, matching the
// pattern against each process's full command line. The calling process is
// never matched.
type ProcfsProcessCheck struct {
	fs   procfs.FS
	self int
}

// NewProcfsProcessCheck creates a ProcessCheck rooted at procRoot.
func NewProcfsProcessCheck(procRoot string) (*ProcfsProcessCheck, error) {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrProbeSpawn, procRoot, err)
	}
	return &ProcfsProcessCheck{fs: fs, self: os.Getpid()}, nil
}

// Running reports whether at least one process matches pattern.
func (c *ProcfsProcessCheck) Running(ctx context.Context, pattern *regexp.Regexp) (bool, error) {
	procs, err := c.fs.AllProcs()
	if err != nil {
		return false, fmt.Errorf("%w: list processes: %v", ErrProbeOutput, err)
	}

	for _, proc := range procs {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if proc.PID == c.self {
			continue
		}

		// Processes can exit between listing and reading; skip them.
		args, err := proc.CmdLine()
		if err != nil {
			continue
		}
		cmdline := strings.Join(args, " ")
		if cmdline == "" {
			// Kernel threads have no command line.
			if cmdline, err = proc.Comm(); err != nil {
				continue
			}
		}
		if pattern.MatchString(cmdline) {
			return true, nil
		}
	}
	return false, nil
}

// PresenceProbe checks that an auxiliary process is alive. Presence probes
// are informational and never gate the verdict.
type PresenceProbe struct {
	name    string
	pattern *regexp.Regexp
	check   ProcessCheck
}

// NewPresenceProbe creates a presence probe for processes matching pattern.
func NewPresenceProbe(name string, pattern *regexp.Regexp, check ProcessCheck) *PresenceProbe {
	return &PresenceProbe{name: name, pattern: pattern, check: check}
}

// Name returns the name of this probe.
func (p *PresenceProbe) Name() string {
	return p.name
}

// Run performs the presence check.
func (p *PresenceProbe) Run(ctx context.Context) ProbeResult {
	ok, err := p.check.Running(ctx, p.pattern)
	if err != nil {
		return Fail(p.name, fmt.Sprintf("Error checking %s: %v", p.name, err), err)
	}
	if !ok {
		return Fail(p.name, fmt.Sprintf("%s not running", p.pattern), nil)
	}
	return Pass(p.name, fmt.Sprintf("%s is running", p.pattern))
}
