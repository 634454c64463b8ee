package gitstats

import (
	"testing"

	"github.com/folioscan/folioscan/internal/config"
	"github.com/folioscan/folioscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivityLog(t *testing.T) {
	out := "abc1234|Ana Lima|ana@x.com|2023-05-01 10:00:00 +0200|Add login form\n" +
		"25\t0\tsrc/login.ts\n" +
		"8\t2\tsrc/login.test.ts\n" +
		"def5678|Ana Lima|ana@x.com|2023-05-02 11:30:00 +0200|Update docs\n" +
		"12\t4\tREADME.md\n"

	commits := parseActivityLog(out)
	require.Len(t, commits, 2)

	first := commits[0]
	assert.Equal(t, "abc1234", first.Hash)
	assert.Equal(t, "Ana Lima", first.Author)
	assert.Equal(t, "ana@x.com", first.Email)
	assert.Equal(t, "2023-05-01", first.Date)
	assert.Equal(t, "Add login form", first.Subject)
	assert.Equal(t, 33, first.Added)
	assert.Equal(t, 2, first.Deleted)
	assert.Equal(t, []string{"src/login.ts", "src/login.test.ts"}, first.Files)

	second := commits[1]
	assert.Equal(t, "def5678", second.Hash)
	assert.Equal(t, 12, second.Added)
	assert.Equal(t, []string{"README.md"}, second.Files)
}

func TestParseActivityLog_SubjectWithPipes(t *testing.T) {
	out := "abc1234|Ana Lima|ana@x.com|2023-05-01 10:00:00 +0200|feat|scope|: pipes everywhere\n" +
		"1\t1\tmain.go\n"

	commits := parseActivityLog(out)
	require.Len(t, commits, 1)
	assert.Equal(t, "feat|scope|: pipes everywhere", commits[0].Subject)
}

func TestClassifyCommit_FileSignalBeatsMessage(t *testing.T) {
	cfg := config.DefaultScanConfig()

	// A commit touching test files is "test" even when the message says docs
	commit := &commitRecord{
		Subject: "Update documentation",
		Files:   []string{"src/app.test.ts"},
	}
	assert.Equal(t, types.ActivityTest, classifyCommit(commit, cfg))
}

func TestClassifyCommit_StrongestFileSignalWins(t *testing.T) {
	cfg := config.DefaultScanConfig()

	commit := &commitRecord{
		Subject: "Big change",
		Files:   []string{"config.yaml", "style.css", "app.test.ts"},
	}
	assert.Equal(t, types.ActivityTest, classifyCommit(commit, cfg))

	commit = &commitRecord{
		Subject: "Big change",
		Files:   []string{"config.yaml", "style.css"},
	}
	assert.Equal(t, types.ActivityDesign, classifyCommit(commit, cfg))
}

func TestClassifyCommit_MessageFallback(t *testing.T) {
	cfg := config.DefaultScanConfig()

	commit := &commitRecord{
		Subject: "Improve test coverage",
		Files:   []string{"src/main.py"},
	}
	assert.Equal(t, types.ActivityTest, classifyCommit(commit, cfg))

	commit = &commitRecord{
		Subject: "Implement checkout",
		Files:   []string{"src/checkout.py"},
	}
	assert.Equal(t, types.ActivityCode, classifyCommit(commit, cfg))
}

func TestUniqueExtensions(t *testing.T) {
	exts := uniqueExtensions([]string{"a/b.PY", "c/d.py", "e.ts", "Makefile"})
	assert.Equal(t, []string{".py", ".ts"}, exts)
}
