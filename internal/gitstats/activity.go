package gitstats

import (
	"path"
	"sort"
	"strings"

	"github.com/folioscan/folioscan/internal/config"
	"github.com/folioscan/folioscan/internal/types"
)

// commitRecord is one parsed commit from the activity log
type commitRecord struct {
	Hash    string
	Author  string
	Email   string
	Date    string // YYYY-MM-DD
	Subject string
	Added   int
	Deleted int
	Files   []string
}

// parseActivityLog parses `log --pretty=format:%H|%an|%ae|%ci|%s --numstat --all`
func parseActivityLog(out string) []commitRecord {
	var commits []commitRecord
	var current *commitRecord

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}

		if added, deleted, file, ok := parseNumStatFileLine(line); ok {
			if current != nil {
				current.Added += added
				current.Deleted += deleted
				current.Files = append(current.Files, file)
			}
			continue
		}

		parts := strings.SplitN(line, "|", 5)
		if len(parts) != 5 || len(parts[0]) < 7 {
			continue
		}
		commits = append(commits, commitRecord{
			Hash:    parts[0],
			Author:  parts[1],
			Email:   parts[2],
			Date:    parseCommitDate(parts[3]),
			Subject: parts[4],
		})
		current = &commits[len(commits)-1]
	}

	return commits
}

func parseNumStatFileLine(line string) (added, deleted int, file string, ok bool) {
	fields := strings.SplitN(line, "\t", 3)
	if len(fields) != 3 {
		return 0, 0, "", false
	}
	added, deleted, ok = parseNumStatLine(line)
	if !ok {
		return 0, 0, "", false
	}
	return added, deleted, fields[2], true
}

// classifyCommits assigns each commit an activity type. Touched-file
// signals win over message keywords; no signal at all means code.
func classifyCommits(commits []commitRecord, cfg *config.ScanConfig) []types.ActivityRecord {
	records := make([]types.ActivityRecord, 0, len(commits))
	for i := range commits {
		commit := &commits[i]
		records = append(records, types.ActivityRecord{
			Hash:         commit.Hash,
			Author:       commit.Author,
			Email:        commit.Email,
			Date:         commit.Date,
			Subject:      commit.Subject,
			LinesAdded:   commit.Added,
			LinesDeleted: commit.Deleted,
			Extensions:   uniqueExtensions(commit.Files),
			Activity:     classifyCommit(commit, cfg),
		})
	}
	return records
}

func classifyCommit(commit *commitRecord, cfg *config.ScanConfig) types.ActivityType {
	best := types.ActivityType("")
	for _, file := range commit.Files {
		activity, ok := cfg.ActivityForFile(path.Base(file))
		if !ok {
			continue
		}
		if best == "" || activityRank(activity) < activityRank(best) {
			best = activity
		}
	}
	if best != "" {
		return best
	}

	if activity, ok := cfg.ActivityForMessage(commit.Subject); ok {
		return activity
	}
	return types.ActivityCode
}

func activityRank(a types.ActivityType) int {
	switch a {
	case types.ActivityTest:
		return 0
	case types.ActivityDocumentation:
		return 1
	case types.ActivityDesign:
		return 2
	case types.ActivityConfiguration:
		return 3
	default:
		return 4
	}
}

func uniqueExtensions(files []string) []string {
	seen := make(map[string]bool)
	var exts []string
	for _, file := range files {
		ext := strings.ToLower(path.Ext(file))
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// aggregateMetrics rolls commits up per canonical contributor
func aggregateMetrics(commits []commitRecord, records []types.ActivityRecord, canonicalByKey map[string]string, cfg *config.ScanConfig) map[string]*types.ContributorMetrics {
	metrics := make(map[string]*types.ContributorMetrics)
	languageCommits := make(map[string]map[string]int) // name -> language -> commits

	for i := range commits {
		commit := &commits[i]
		name := canonicalByKey[commit.Author+"\x00"+commit.Email]
		if name == "" {
			name = commit.Author
		}

		m := metrics[name]
		if m == nil {
			m = &types.ContributorMetrics{
				Name:     name,
				Activity: make(map[types.ActivityType]*types.ActivityBreakdown),
			}
			metrics[name] = m
			languageCommits[name] = make(map[string]int)
		}

		m.Commits++
		m.LinesAdded += commit.Added
		m.LinesDeleted += commit.Deleted

		activity := records[i].Activity
		breakdown := m.Activity[activity]
		if breakdown == nil {
			breakdown = &types.ActivityBreakdown{}
			m.Activity[activity] = breakdown
		}
		breakdown.Commits++
		breakdown.LinesAdded += commit.Added
		breakdown.LinesDeleted += commit.Deleted

		for _, ext := range records[i].Extensions {
			if m.Extensions == nil {
				m.Extensions = make(map[string]int)
			}
			m.Extensions[ext]++
		}

		// A commit counts once per language it touched
		langs := make(map[string]bool)
		for _, ext := range records[i].Extensions {
			if lang := cfg.LanguageForExtension(ext); lang != "" {
				langs[lang] = true
			}
		}
		for lang := range langs {
			languageCommits[name][lang]++
		}

		if m.FirstCommit == "" || commit.Date < m.FirstCommit {
			m.FirstCommit = commit.Date
		}
		if commit.Date > m.LastCommit {
			m.LastCommit = commit.Date
		}
	}

	for name, m := range metrics {
		m.DurationDays = daysBetween(m.FirstCommit, m.LastCommit)
		m.DurationMonths = round2(float64(m.DurationDays) / 30.44)
		m.TopLanguages = topLanguages(languageCommits[name], 5)
	}

	return metrics
}

func topLanguages(counts map[string]int, n int) []types.LanguageShare {
	shares := make([]types.LanguageShare, 0, len(counts))
	for lang, commits := range counts {
		shares = append(shares, types.LanguageShare{Language: lang, Commits: commits})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Commits != shares[j].Commits {
			return shares[i].Commits > shares[j].Commits
		}
		return shares[i].Language < shares[j].Language
	})
	if len(shares) > n {
		shares = shares[:n]
	}
	return shares
}
