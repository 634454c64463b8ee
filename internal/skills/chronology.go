package skills

import (
	"math"
	"sort"

	"github.com/folioscan/folioscan/internal/types"
)

// buildReport turns folded signals into the aggregate map and the
// recency-ranked chronological list.
func buildReport(signals map[string]*signal) *types.SkillReport {
	report := &types.SkillReport{
		Skills: make(map[string]*types.SkillAggregate, len(signals)),
	}

	total := 0
	for _, s := range signals {
		total += s.count
	}

	ordered := make([]*signal, 0, len(signals))
	for _, s := range signals {
		ordered = append(ordered, s)

		languages := make([]string, 0, len(s.languages))
		for lang := range s.languages {
			languages = append(languages, lang)
		}
		sort.Strings(languages)

		percentage := 0.0
		if total > 0 {
			percentage = math.Round(float64(s.count)/float64(total)*10000) / 100
		}
		report.Skills[s.skill] = &types.SkillAggregate{
			Count:      s.count,
			Percentage: percentage,
			Languages:  languages,
		}
	}

	// Most recent first; signals with no timestamp sort last. Name breaks
	// ties so ranks are stable.
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		switch {
		case a.lastUsed == nil && b.lastUsed == nil:
			return a.skill < b.skill
		case a.lastUsed == nil:
			return false
		case b.lastUsed == nil:
			return true
		case *a.lastUsed != *b.lastUsed:
			return *a.lastUsed > *b.lastUsed
		default:
			return a.skill < b.skill
		}
	})

	for i, s := range ordered {
		report.Chronological = append(report.Chronological, types.ChronologicalSkill{
			Rank:         i + 1,
			Skill:        s.skill,
			LastUsedUnix: s.lastUsed,
			LastUsedPath: s.lastPath,
			ProjectTag:   s.tag,
		})
	}

	return report
}
