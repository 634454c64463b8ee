package gitstats

import (
	"regexp"
	"sort"
	"strings"

	"github.com/folioscan/folioscan/internal/types"
)

// rawIdentity is one (name, email) pair as it appears in git history
type rawIdentity struct {
	Name    string
	Email   string
	Commits int
	Added   int
	Deleted int
}

func (r rawIdentity) key() string { return r.Name + "\x00" + r.Email }

var noreplyPrefix = regexp.MustCompile(`^\d+\+`)

// normalizeName lowercases, strips non-letter characters (keeping word
// boundaries) and collapses whitespace.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case 'a' <= r && r <= 'z':
			b.WriteRune(r)
		case r == ' ' || r == '\t' || r == '-' || r == '_' || r == '.':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// emailLocalPart extracts the normalized local part of an email; numeric
// GitHub no-reply prefixes ("12345+user@users.noreply...") are stripped.
func emailLocalPart(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	local = noreplyPrefix.ReplaceAllString(local, "")
	return normalizeName(local)
}

func isNoreply(email string) bool {
	return strings.Contains(strings.ToLower(email), "noreply")
}

// identityView caches derived forms for matching
type identityView struct {
	raw       rawIdentity
	normName  string
	normLocal string
	tokens    []string // of normName, when it has >= 2
}

// resolveIdentities merges raw identities into canonical contributors and
// returns both the merged list and the raw-key → canonical-name mapping
// used by the activity aggregation.
func resolveIdentities(raws []rawIdentity) ([]types.Contributor, map[string]string) {
	if len(raws) == 0 {
		return nil, map[string]string{}
	}

	views := make([]identityView, len(raws))
	for i, raw := range raws {
		view := identityView{
			raw:       raw,
			normName:  normalizeName(raw.Name),
			normLocal: emailLocalPart(raw.Email),
		}
		if tokens := strings.Fields(view.normName); len(tokens) >= 2 {
			view.tokens = tokens
		}
		views[i] = view
	}

	// Precomputed indexes keep the pairwise matching from going quadratic
	// on large repositories: a candidate pair only exists when the two
	// identities share at least one indexed term.
	index := make(map[string][]int)
	add := func(term string, i int) {
		if term != "" {
			index[term] = append(index[term], i)
		}
	}
	for i, view := range views {
		add(view.normName, i)
		add(view.normLocal, i)
		for _, token := range view.tokens {
			add(token, i)
		}
	}

	uf := newUnionFind(len(views))
	for _, ids := range index {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				if uf.find(ids[i]) == uf.find(ids[j]) {
					continue
				}
				if identitiesMatch(views[ids[i]], views[ids[j]]) {
					uf.union(ids[i], ids[j])
				}
			}
		}
	}

	groups := make(map[int][]int)
	for i := range views {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	lastNames := collectLastNames(views)

	canonicalByKey := make(map[string]string, len(raws))
	var contributors []types.Contributor
	for _, members := range groups {
		contributor := mergeGroup(views, members, lastNames)
		for _, i := range members {
			canonicalByKey[views[i].raw.key()] = contributor.Name
		}
		contributors = append(contributors, contributor)
	}

	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].Commits != contributors[j].Commits {
			return contributors[i].Commits > contributors[j].Commits
		}
		return contributors[i].Name < contributors[j].Name
	})

	return contributors, canonicalByKey
}

// identitiesMatch applies the alias rules: direct equality of normalized
// name / email local part in any combination, or a token match when either
// side has a multi-token name.
func identitiesMatch(a, b identityView) bool {
	if a.normName == "" && a.normLocal == "" {
		return false
	}

	if a.normName != "" && (a.normName == b.normName || a.normName == b.normLocal) {
		return true
	}
	if a.normLocal != "" && (a.normLocal == b.normName || a.normLocal == b.normLocal) {
		return true
	}

	for _, token := range a.tokens {
		if token == b.normName || token == b.normLocal {
			return true
		}
	}
	for _, token := range b.tokens {
		if token == a.normName || token == a.normLocal {
			return true
		}
	}

	return false
}

// mergeGroup selects the canonical display name and sums the stats.
// Preference: a real multi-word name, then a non-noreply email's owner,
// then the longer name.
func mergeGroup(views []identityView, members []int, lastNames map[string]bool) types.Contributor {
	best := members[0]
	for _, i := range members[1:] {
		if betterCanonical(views[i], views[best]) {
			best = i
		}
	}

	name := views[best].raw.Name
	if len(views[best].tokens) < 2 {
		// No real full name anywhere in the group: last-resort heuristic
		// split of a concatenated username (e.g. "kylekmcleod").
		if split := splitConcatenatedName(views[best].normName, lastNames); split != "" {
			name = split
		}
	}

	emailSet := make(map[string]bool)
	contributor := types.Contributor{Name: name}
	for _, i := range members {
		raw := views[i].raw
		contributor.Commits += raw.Commits
		contributor.LinesAdded += raw.Added
		contributor.LinesDeleted += raw.Deleted
		if raw.Email != "" {
			emailSet[raw.Email] = true
		}
	}
	for email := range emailSet {
		contributor.Emails = append(contributor.Emails, email)
	}
	sort.Strings(contributor.Emails)

	return contributor
}

func betterCanonical(a, b identityView) bool {
	aMulti, bMulti := len(a.tokens) >= 2, len(b.tokens) >= 2
	if aMulti != bMulti {
		return aMulti
	}
	aReal, bReal := !isNoreply(a.raw.Email), !isNoreply(b.raw.Email)
	if aReal != bReal {
		return aReal
	}
	return len(a.raw.Name) > len(b.raw.Name)
}

// collectLastNames gathers surname tokens observed in multi-word names
// across the whole dataset.
func collectLastNames(views []identityView) map[string]bool {
	lastNames := make(map[string]bool)
	for _, view := range views {
		if len(view.tokens) >= 2 {
			lastNames[view.tokens[len(view.tokens)-1]] = true
		}
	}
	return lastNames
}

// splitConcatenatedName tries to split a single-token username at a known
// surname boundary ("kylekmcleod" + surname "mcleod" → "Kylek McLeod").
// Heuristic of last resort; returns "" when no surname matches.
func splitConcatenatedName(name string, lastNames map[string]bool) string {
	if name == "" || strings.Contains(name, " ") {
		return ""
	}
	for lastName := range lastNames {
		if len(name) > len(lastName) && strings.HasSuffix(name, lastName) {
			first := name[:len(name)-len(lastName)]
			return titleCase(first) + " " + titleCase(lastName)
		}
	}
	return ""
}

// titleCase capitalizes a lowercase name token, keeping the inner capital
// of Mc/Mac surnames ("mcleod" → "McLeod", "macdonald" → "MacDonald").
func titleCase(s string) string {
	if s == "" {
		return s
	}
	if rest, ok := strings.CutPrefix(s, "mc"); ok && len(rest) > 0 {
		return "Mc" + strings.ToUpper(rest[:1]) + rest[1:]
	}
	if rest, ok := strings.CutPrefix(s, "mac"); ok && len(rest) > 1 {
		return "Mac" + strings.ToUpper(rest[:1]) + rest[1:]
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// unionFind is a plain disjoint-set over identity indexes
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}
