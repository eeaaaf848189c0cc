package docker

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// fakeDocker describes how the generated docker stand-in behaves.
type fakeDocker struct {
	InfoExit    int
	InspectExit int
	PullExit    int
	// RunMode is one of "output", "silent", "fail" or "late-output".
	RunMode string
	RunExit int
	// StopDelay is passed to sleep before stop kills the container, e.g. "0.5".
	StopDelay string
}

const fakeScript = `#!/bin/sh
dir="$(dirname "$0")"
echo "$*" >> "$dir/calls.log"
case "$1" in
info) exit %[1]d ;;
image) exit %[2]d ;;
pull)
	echo "stable: Pulling from superplanehq/superplane-demo"
	echo "Digest: sha256:0123" 1>&2
	exit %[3]d ;;
rm) exit 0 ;;
stop)
	sleep %[6]s
	if [ -f "$dir/run.pid" ]; then kill "$(cat "$dir/run.pid")" 2>/dev/null; fi
	exit 0 ;;
run)
	echo $$ > "$dir/run.pid"
	trap 'exit 0' TERM
	case "%[4]s" in
	fail) exit %[5]d ;;
	output) echo "listening on :3000" ;;
	late-output) sleep 1; echo "late" ;;
	esac
	while :; do sleep 0.05; done ;;
esac
exit 0
`

// install writes the fake binary into a temp dir and returns its path.
func (f fakeDocker) install(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake docker script requires a POSIX shell")
	}
	if f.RunMode == "" {
		f.RunMode = "output"
	}
	if f.StopDelay == "" {
		f.StopDelay = "0"
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "docker")
	script := fmt.Sprintf(fakeScript, f.InfoExit, f.InspectExit, f.PullExit, f.RunMode, f.RunExit, f.StopDelay)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake docker: %v", err)
	}
	return path
}

// calls returns the argument lines the fake recorded, in order.
func calls(t *testing.T, binary string) []string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.Dir(binary), "calls.log"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("read calls: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func testOptions(binary string) Options {
	return Options{
		Binary:         binary,
		Image:          "ghcr.io/superplanehq/superplane-demo:stable",
		ContainerName:  "superplane-desktop",
		Port:           3000,
		Volume:         "spdata",
		CommandTimeout: 2 * time.Second,
		GracePeriod:    300 * time.Millisecond,
	}
}

// lineRecorder is a concurrency-safe LineSink.
type lineRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *lineRecorder) sink(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *lineRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *lineRecorder) contains(want string) bool {
	for _, line := range r.snapshot() {
		if strings.Contains(line, want) {
			return true
		}
	}
	return false
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
