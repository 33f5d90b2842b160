package health

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/procfs"
)

// tcpListen is the kernel's TCP_LISTEN socket state as it appears in the
// st column of /proc/net/tcp.
const tcpListen = 0x0A

// ListenCheck reports whether a local TCP port has a listening socket.
type ListenCheck interface {
	Listening(ctx context.Context, port int) (bool, error)
}

// ProcNetListenCheck reads the kernel's TCP socket tables through procfs.
// No connection is made to the port, and sockets held by the calling process
// are ignored so healthgate never sees its own listeners as the dependency.
type ProcNetListenCheck struct {
	fs   procfs.FS
	self int
}

// NewProcNetListenCheck creates a ListenCheck rooted at procRoot
// (normally procfs.DefaultMountPoint).
func NewProcNetListenCheck(procRoot string) (*ProcNetListenCheck, error) {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrProbeSpawn, procRoot, err)
	}
	return &ProcNetListenCheck{fs: fs, self: os.Getpid()}, nil
}

// Listening reports whether port appears in LISTEN state in the IPv4 or IPv6
// socket table. A missing table (e.g. IPv6 disabled) is only an error when
// neither table could be read.
func (c *ProcNetListenCheck) Listening(ctx context.Context, port int) (bool, error) {
	readers := []func() (procfs.NetTCP, error){c.fs.NetTCP, c.fs.NetTCP6}
	own := c.ownSockets()

	var (
		read    int
		lastErr error
	)
	for _, readTable := range readers {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		table, err := readTable()
		if err != nil {
			lastErr = err
			continue
		}
		read++
		for _, line := range table {
			if line.St != tcpListen || line.LocalPort != uint64(port) {
				continue
			}
			if own[line.Inode] {
				continue
			}
			return true, nil
		}
	}

	if read == 0 {
		return false, fmt.Errorf("%w: read tcp tables: %v", ErrProbeOutput, lastErr)
	}
	return false, nil
}

// ownSockets returns the socket inodes held open by the calling process.
// An unreadable fd table yields an empty set.
func (c *ProcNetListenCheck) ownSockets() map[uint64]bool {
	own := make(map[uint64]bool)

	proc, err := c.fs.Proc(c.self)
	if err != nil {
		return own
	}
	targets, err := proc.FileDescriptorTargets()
	if err != nil {
		return own
	}
	for _, target := range targets {
		var inode uint64
		if _, err := fmt.Sscanf(target, "socket:[%d]", &inode); err == nil {
			own[inode] = true
		}
	}
	return own
}

// ListenProbe checks whether a TCP port is accepting connections.
type ListenProbe struct {
	name  string
	port  int
	check ListenCheck
}

// NewListenProbe creates a listen probe for port.
func NewListenProbe(name string, port int, check ListenCheck) *ListenProbe {
	return &ListenProbe{name: name, port: port, check: check}
}

// Name returns the name of this probe.
func (p *ListenProbe) Name() string {
	return p.name
}

// Run performs the listen check.
func (p *ListenProbe) Run(ctx context.Context) ProbeResult {
	ok, err := p.check.Listening(ctx, p.port)
	if err != nil {
		return Fail(p.name, fmt.Sprintf("Error checking port %d: %v", p.port, err), err)
	}
	if !ok {
		return Fail(p.name, fmt.Sprintf("Port %d not listening", p.port), nil)
	}
	return Pass(p.name, fmt.Sprintf("Port %d is listening", p.port))
}
