// Package version reports build metadata for the hackdash binary.
package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Set via -ldflags "-X github.com/j-veylop/hackdash/internal/version.Version=..."
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

var (
	once          sync.Once
	execCommand   = exec.CommandContext
	readBuildInfo = debug.ReadBuildInfo
)

const gitTimeout = 2 * time.Second

func ensureInitialized() {
	once.Do(func() {
		if Commit == "" {
			Commit = buildInfoRevision()
		}
		if Commit == "" {
			Commit = gitOutput("unknown", "describe", "--always", "--dirty")
		}
		if Version == "" {
			Version = strings.TrimPrefix(gitOutput("dev", "describe", "--tags", "--abbrev=0"), "v")
		}
		if Date == "" {
			Date = time.Now().Format("2006-01-02")
		}
	})
}

// buildInfoRevision reads the VCS stamp embedded by `go build`.
func buildInfoRevision() string {
	info, ok := readBuildInfo()
	if !ok {
		return ""
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return rev
}

func gitOutput(fallback string, args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	cmd := execCommand(ctx, "git", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return fallback
	}
	if v := strings.TrimSpace(out.String()); v != "" {
		return v
	}
	return fallback
}

// Reset clears cached values so the next call recomputes them.
func Reset() {
	Version, Commit, Date = "", "", ""
	once = sync.Once{}
}

func GetVersion() string {
	ensureInitialized()
	return Version
}

func GetCommit() string {
	ensureInitialized()
	return Commit
}

func GetDate() string {
	ensureInitialized()
	return Date
}

// Info returns a one-line description suitable for --version.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("hackdash %s (commit: %s, built: %s, %s/%s)",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
