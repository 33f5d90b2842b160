package health

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const netTCPHeader = "  sl  local_address rem_address   st tx_queue rx_queue tr tm->when retrnsmt   uid  timeout inode\n"

// netTCPLine renders one /proc/net/tcp row for an IPv4 socket.
func netTCPLine(sl int, localHex, state string) string {
	return fmt.Sprintf("   %d: 00000000:%s 00000000:0000 %s 00000000:00000000 00:00000000 00000000  1000        0 %d 1 0000000000000000 100 0 0 10 0\n",
		sl, localHex, state, 12340+sl)
}

// fakeProcRoot builds a minimal proc tree under t.TempDir().
type fakeProcRoot struct {
	t    *testing.T
	root string
}

func newFakeProcRoot(t *testing.T) *fakeProcRoot {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "net"), 0o755); err != nil {
		t.Fatal(err)
	}
	return &fakeProcRoot{t: t, root: root}
}

func (f *fakeProcRoot) write(rel, content string) {
	f.t.Helper()
	path := filepath.Join(f.root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		f.t.Fatal(err)
	}
}

func (f *fakeProcRoot) tcp(lines ...string) {
	f.write("net/tcp", netTCPHeader+strings.Join(lines, ""))
}

func (f *fakeProcRoot) process(pid, cmdline, comm string) {
	f.write(filepath.Join(pid, "cmdline"), cmdline)
	f.write(filepath.Join(pid, "comm"), comm+"\n")
}

// socket adds an fd symlink for pid pointing at a socket inode.
func (f *fakeProcRoot) socket(pid string, fd, inode int) {
	f.t.Helper()
	dir := filepath.Join(f.root, pid, "fd")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		f.t.Fatal(err)
	}
	if err := os.Symlink(fmt.Sprintf("socket:[%d]", inode), filepath.Join(dir, fmt.Sprint(fd))); err != nil {
		f.t.Fatal(err)
	}
}
