package skills

import (
	"fmt"
	"path"
	"strings"
	"time"

	"log/slog"

	"github.com/go-enry/go-enry/v2"

	"github.com/folioscan/folioscan/internal/config"
	"github.com/folioscan/folioscan/internal/discovery"
	"github.com/folioscan/folioscan/internal/types"
)

// Analyzer detects skills in code files and ranks them chronologically
type Analyzer struct {
	rules map[string]*compiledRule
	cfg   *config.ScanConfig
	tags  *discovery.TagIndex
}

// NewAnalyzer loads the embedded skill rules
func NewAnalyzer(cfg *config.ScanConfig, tags *discovery.TagIndex) (*Analyzer, error) {
	rules, err := loadEmbeddedRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load skill rules: %w", err)
	}
	return &Analyzer{rules: rules, cfg: cfg, tags: tags}, nil
}

// signal tracks one skill while files are being folded in
type signal struct {
	skill     string
	count     int
	languages map[string]bool
	lastUsed  *int64
	lastPath  string
	tag       int
}

// Analyze folds every analyzed code file into skill signals. fileTimes
// maps posix-relative paths to unix timestamps (from archive metadata);
// projectTimes supplies a per-project fallback keyed by tag. Either map
// may be nil.
func (a *Analyzer) Analyze(results []types.ScanResult, provider types.Provider, fileTimes map[string]int64, projectTimes map[int]int64) *types.SkillReport {
	start := time.Now()
	signals := make(map[string]*signal)

	for _, result := range results {
		code, ok := result.(*types.CodeFile)
		if !ok || code.Skipped {
			continue
		}

		content, err := provider.ReadFile(code.FilePath)
		if err != nil {
			continue
		}

		language := a.guessLanguage(code, content)
		if language == "" {
			continue
		}

		tag := code.Tag
		ts := timestampFor(code.FilePath, tag, fileTimes, projectTimes)

		for _, skill := range a.skillsFor(language, string(content)) {
			s := signals[skill]
			if s == nil {
				s = &signal{skill: skill, languages: make(map[string]bool), tag: tag}
				signals[skill] = s
			}
			s.count++
			s.languages[language] = true
			// Same skill across files keeps only the most recent sighting
			if moreRecent(ts, s.lastUsed, code.FilePath, s.lastPath) {
				s.lastUsed = ts
				s.lastPath = code.FilePath
				s.tag = tag
			}
		}
	}

	report := buildReport(signals)
	slog.Debug("Analyzed skills", "skills", len(report.Skills), "duration", time.Since(start))
	return report
}

// guessLanguage prefers the scanner's language, then the configured
// extension table, then content sniffing.
func (a *Analyzer) guessLanguage(code *types.CodeFile, content []byte) string {
	if code.Language != "" {
		return code.Language
	}
	name := path.Base(code.FilePath)
	if lang := a.cfg.LanguageForFile(name); lang != "" {
		return lang
	}
	if strings.Contains(strings.ToLower(string(content)), "<!doctype html") {
		return "HTML"
	}
	return enry.GetLanguage(name, content)
}

func (a *Analyzer) skillsFor(language, content string) []string {
	if rule := a.rules[language]; rule != nil {
		return rule.match(content)
	}
	// Languages without a rule file still yield a default skill
	return []string{language + " Development"}
}

func timestampFor(rel string, tag int, fileTimes map[string]int64, projectTimes map[int]int64) *int64 {
	if ts, ok := fileTimes[rel]; ok && ts > 0 {
		return &ts
	}
	if ts, ok := projectTimes[tag]; ok && ts > 0 {
		return &ts
	}
	return nil
}

// moreRecent decides whether a new sighting displaces the stored one.
// Known timestamps beat unknown; ties break on path for determinism.
func moreRecent(ts, prev *int64, path, prevPath string) bool {
	if prevPath == "" {
		return true
	}
	switch {
	case ts == nil && prev == nil:
		return path < prevPath
	case ts == nil:
		return false
	case prev == nil:
		return true
	case *ts != *prev:
		return *ts > *prev
	default:
		return path < prevPath
	}
}
