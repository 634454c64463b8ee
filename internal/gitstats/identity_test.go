package gitstats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Jordan Truong", "jordan truong"},
		{"jordan-truong", "jordan truong"},
		{"Jordan_Truong", "jordan truong"},
		{"  Jordan   Truong  ", "jordan truong"},
		{"jordan.truong", "jordan truong"},
		{"J0rdan!", "jrdan"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, normalizeName(tt.input), tt.input)
	}
}

func TestEmailLocalPart(t *testing.T) {
	assert.Equal(t, "jordan", emailLocalPart("jordan@example.com"))
	assert.Equal(t, "jordan truong", emailLocalPart("jordan.truong@example.com"))
	// Numeric GitHub no-reply prefixes are stripped
	assert.Equal(t, "jtruong", emailLocalPart("12345+jtruong@users.noreply.github.com"))
	assert.Equal(t, "jordan", emailLocalPart("jordan"))
}

func TestResolveIdentities_MergesAliases(t *testing.T) {
	contributors, canonical := resolveIdentities([]rawIdentity{
		{Name: "Jordan Truong", Email: "jordan@example.com", Commits: 10, Added: 100, Deleted: 20},
		{Name: "jordan", Email: "jordan@example.com", Commits: 5, Added: 50, Deleted: 5},
		{Name: "jordan", Email: "12345+jordan@users.noreply.github.com", Commits: 2, Added: 8, Deleted: 1},
	})

	require.Len(t, contributors, 1)
	c := contributors[0]
	// Multi-word name wins the canonical slot
	assert.Equal(t, "Jordan Truong", c.Name)
	assert.Equal(t, 17, c.Commits)
	assert.Equal(t, 158, c.LinesAdded)
	assert.Equal(t, 26, c.LinesDeleted)
	assert.Equal(t, []string{"12345+jordan@users.noreply.github.com", "jordan@example.com"}, c.Emails)

	// Every raw alias maps to the canonical name
	for _, name := range canonical {
		assert.Equal(t, "Jordan Truong", name)
	}
}

func TestResolveIdentities_TokenMatch(t *testing.T) {
	// "Sam Okoye" and the bare username "okoye" share a name token
	contributors, _ := resolveIdentities([]rawIdentity{
		{Name: "Sam Okoye", Email: "sam@work.example", Commits: 4},
		{Name: "okoye", Email: "okoye@home.example", Commits: 3},
	})

	require.Len(t, contributors, 1)
	assert.Equal(t, "Sam Okoye", contributors[0].Name)
	assert.Equal(t, 7, contributors[0].Commits)
}

func TestResolveIdentities_KeepsDistinctPeople(t *testing.T) {
	contributors, _ := resolveIdentities([]rawIdentity{
		{Name: "Ana Lima", Email: "ana@example.com", Commits: 6},
		{Name: "Ben Cole", Email: "ben@example.com", Commits: 4},
	})

	require.Len(t, contributors, 2)
	// Sorted by commits descending
	assert.Equal(t, "Ana Lima", contributors[0].Name)
	assert.Equal(t, "Ben Cole", contributors[1].Name)
}

func TestResolveIdentities_PrefersNonNoreplyCanonical(t *testing.T) {
	contributors, _ := resolveIdentities([]rawIdentity{
		{Name: "kyle", Email: "99+kyle@users.noreply.github.com", Commits: 8},
		{Name: "kyle", Email: "kyle@example.com", Commits: 2},
	})

	require.Len(t, contributors, 1)
	assert.Equal(t, 10, contributors[0].Commits)
	assert.Len(t, contributors[0].Emails, 2)
}

func TestSplitConcatenatedName(t *testing.T) {
	lastNames := map[string]bool{"mcleod": true}

	assert.Equal(t, "Kylek McLeod", splitConcatenatedName("kylekmcleod", lastNames))
	assert.Empty(t, splitConcatenatedName("kylek", lastNames))
	assert.Empty(t, splitConcatenatedName("mcleod", lastNames))
	assert.Empty(t, splitConcatenatedName("already split", lastNames))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Cole", titleCase("cole"))
	assert.Equal(t, "McLeod", titleCase("mcleod"))
	assert.Equal(t, "MacDonald", titleCase("macdonald"))
	// short mac- words are not surname prefixes
	assert.Equal(t, "Mack", titleCase("mack"))
	assert.Equal(t, "Mc", titleCase("mc"))
	assert.Empty(t, titleCase(""))
}

func TestResolveIdentities_ConcatenatedUsernameSplit(t *testing.T) {
	contributors, _ := resolveIdentities([]rawIdentity{
		{Name: "Sarah Mcleod", Email: "sarah@example.com", Commits: 5},
		{Name: "kylekmcleod", Email: "kylek@example.com", Commits: 3},
	})

	require.Len(t, contributors, 2)
	names := []string{contributors[0].Name, contributors[1].Name}
	assert.Contains(t, names, "Sarah Mcleod")
	assert.Contains(t, names, "Kylek McLeod")
}
