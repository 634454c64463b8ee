// Package gitstats extracts per-contributor commit and line statistics
// from git-backed projects, resolves contributor identity across divergent
// name/email spellings, and classifies per-commit activity.
package gitstats

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"log/slog"
)

// Query timeouts. A hung or malicious repository degrades that project's
// analysis to an error result, never the whole upload.
const (
	shortLogTimeout    = 8 * time.Second
	numStatTimeout     = 12 * time.Second
	activityTimeout    = 12 * time.Second
	firstCommitTimeout = 5 * time.Second
)

// Runner is the narrow interface over git queries. Implementations must
// enforce hard timeouts and a non-interactive environment; tests fake it
// without spawning processes.
type Runner interface {
	// ShortLog returns `git shortlog -sne --all` output
	ShortLog(ctx context.Context, dir string) (string, error)

	// NumStat returns `git log --pretty=format:%an <%ae> --numstat --all` output
	NumStat(ctx context.Context, dir string) (string, error)

	// ActivityLog returns `git log --pretty=format:%H|%an|%ae|%ci|%s --numstat --all` output
	ActivityLog(ctx context.Context, dir string) (string, error)

	// FirstCommitUnix returns the unix timestamp of the repository's
	// earliest commit, or 0 when the repository has none.
	FirstCommitUnix(ctx context.Context, dir string) (int64, error)
}

// ExecRunner runs the git binary
type ExecRunner struct {
	// GitPath overrides the binary looked up on PATH; used in tests
	GitPath string
}

// NewExecRunner creates a Runner backed by the git binary
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) git() string {
	if r.GitPath != "" {
		return r.GitPath
	}
	return "git"
}

// nonInteractiveEnv disables credential prompts and lock contention so a
// repository can never block the pipeline waiting for input.
func nonInteractiveEnv() []string {
	return append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"GIT_ASKPASS=true",
		"GIT_OPTIONAL_LOCKS=0",
	)
}

func (r *ExecRunner) run(ctx context.Context, dir string, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.git(), append([]string{"-C", dir}, args...)...)
	cmd.Env = nonInteractiveEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	slog.Debug("Ran git query", "dir", dir, "args", strings.Join(args, " "), "duration", time.Since(start))

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("git %s timed out after %s", args[0], timeout)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("git %s failed: %s", args[0], firstLine(detail))
	}

	return stdout.String(), nil
}

// ShortLog implements Runner
func (r *ExecRunner) ShortLog(ctx context.Context, dir string) (string, error) {
	return r.run(ctx, dir, shortLogTimeout, "shortlog", "-sne", "--all")
}

// NumStat implements Runner
func (r *ExecRunner) NumStat(ctx context.Context, dir string) (string, error) {
	return r.run(ctx, dir, numStatTimeout, "log", "--pretty=format:%an <%ae>", "--numstat", "--all")
}

// ActivityLog implements Runner
func (r *ExecRunner) ActivityLog(ctx context.Context, dir string) (string, error) {
	return r.run(ctx, dir, activityTimeout, "log", "--pretty=format:%H|%an|%ae|%ci|%s", "--numstat", "--all")
}

// FirstCommitUnix implements Runner
func (r *ExecRunner) FirstCommitUnix(ctx context.Context, dir string) (int64, error) {
	out, err := r.run(ctx, dir, firstCommitTimeout, "log", "--all", "--max-parents=0", "--format=%ct")
	if err != nil {
		return 0, err
	}

	// Multiple root commits are possible; the earliest one wins
	var earliest int64
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ts, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			continue
		}
		if earliest == 0 || ts < earliest {
			earliest = ts
		}
	}
	return earliest, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
