package gitstats

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"github.com/folioscan/folioscan/internal/config"
	"github.com/folioscan/folioscan/internal/types"
)

// Analyzer produces contributor statistics for git-backed projects
type Analyzer struct {
	runner Runner
	cfg    *config.ScanConfig
}

// NewAnalyzer creates an analyzer over a git Runner
func NewAnalyzer(runner Runner, cfg *config.ScanConfig) *Analyzer {
	return &Analyzer{runner: runner, cfg: cfg}
}

// Analyze runs the git queries for one project directory. A missing .git
// directory short-circuits to an empty result; query failures or timeouts
// produce an error-marker result so the rest of the upload continues.
func (a *Analyzer) Analyze(ctx context.Context, dir string, tag int) *types.ProjectGitStats {
	stats := &types.ProjectGitStats{Tag: tag}

	if info, err := os.Stat(filepath.Join(dir, ".git")); err != nil || !info.IsDir() {
		return stats
	}

	shortlog, err := a.runner.ShortLog(ctx, dir)
	if err != nil {
		slog.Debug("Git shortlog failed", "dir", dir, "error", err)
		stats.Error = err.Error()
		return stats
	}
	raws := parseShortLog(shortlog)

	numstat, err := a.runner.NumStat(ctx, dir)
	if err != nil {
		slog.Debug("Git numstat failed", "dir", dir, "error", err)
		stats.Error = err.Error()
		return stats
	}
	raws = applyNumStat(raws, numstat)

	contributors, canonicalByKey := resolveIdentities(raws)

	totalCommits := 0
	for _, c := range contributors {
		totalCommits += c.Commits
	}
	stats.TotalCommits = totalCommits

	// Avoid division errors on empty histories
	denominator := totalCommits
	if denominator == 0 {
		denominator = 1
	}
	for i := range contributors {
		contributors[i].PercentOfCommits = round2(float64(contributors[i].Commits) / float64(denominator) * 100)
	}
	stats.Contributors = contributors

	activityLog, err := a.runner.ActivityLog(ctx, dir)
	if err != nil {
		slog.Debug("Git activity log failed", "dir", dir, "error", err)
		stats.Error = err.Error()
		return stats
	}
	commits := parseActivityLog(activityLog)
	stats.Activity = classifyCommits(commits, a.cfg)
	stats.Metrics = aggregateMetrics(commits, stats.Activity, canonicalByKey, a.cfg)

	if first, err := a.runner.FirstCommitUnix(ctx, dir); err == nil {
		stats.FirstCommitUnix = first
	} else {
		slog.Debug("Git first-commit query failed", "dir", dir, "error", err)
	}

	return stats
}

// parseShortLog parses `shortlog -sne --all` lines:
//
//	   42\tJordan Truong <jordan@x.com>
func parseShortLog(out string) []rawIdentity {
	var raws []rawIdentity
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			// Some git versions pad with spaces instead of a tab
			fields = strings.SplitN(line, " ", 2)
			if len(fields) != 2 {
				continue
			}
		}

		commits, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			continue
		}

		name, email := splitAuthor(strings.TrimSpace(fields[1]))
		raws = append(raws, rawIdentity{Name: name, Email: email, Commits: commits})
	}
	return raws
}

// applyNumStat accumulates lines added/deleted per raw author from
// `log --pretty=format:%an <%ae> --numstat --all` output and returns the
// updated identity list.
func applyNumStat(raws []rawIdentity, out string) []rawIdentity {
	byKey := make(map[string]*rawIdentity, len(raws))
	order := make([]string, 0, len(raws))
	for i := range raws {
		identity := raws[i]
		byKey[identity.key()] = &identity
		order = append(order, identity.key())
	}

	var current *rawIdentity
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		added, deleted, ok := parseNumStatLine(line)
		if ok {
			if current != nil {
				current.Added += added
				current.Deleted += deleted
			}
			continue
		}

		name, email := splitAuthor(line)
		key := name + "\x00" + email
		if identity, found := byKey[key]; found {
			current = identity
		} else {
			// Author seen in the log but not in shortlog (e.g. a ref
			// pruned between the two queries); count it anyway.
			identity := &rawIdentity{Name: name, Email: email}
			byKey[key] = identity
			order = append(order, key)
			current = identity
		}
	}

	result := make([]rawIdentity, 0, len(order))
	for _, key := range order {
		result = append(result, *byKey[key])
	}
	return result
}

// parseNumStatLine parses "12\t3\tpath" numstat lines; binary files show
// "-" counts and contribute zero.
func parseNumStatLine(line string) (added, deleted int, ok bool) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 {
		return 0, 0, false
	}
	if fields[0] != "-" {
		var err error
		if added, err = strconv.Atoi(fields[0]); err != nil {
			return 0, 0, false
		}
	}
	if fields[1] != "-" {
		var err error
		if deleted, err = strconv.Atoi(fields[1]); err != nil {
			return 0, 0, false
		}
	}
	return added, deleted, true
}

// splitAuthor parses "Name <email>"
func splitAuthor(s string) (name, email string) {
	open := strings.LastIndexByte(s, '<')
	if open < 0 {
		return strings.TrimSpace(s), ""
	}
	name = strings.TrimSpace(s[:open])
	email = strings.TrimSuffix(strings.TrimSpace(s[open+1:]), ">")
	return name, email
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// parseCommitDate extracts YYYY-MM-DD from an ISO %ci date
func parseCommitDate(ci string) string {
	if len(ci) >= 10 {
		return ci[:10]
	}
	return ci
}

func daysBetween(first, last string) int {
	layout := "2006-01-02"
	start, err1 := time.Parse(layout, first)
	end, err2 := time.Parse(layout, last)
	if err1 != nil || err2 != nil || end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}
