package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/folioscan/folioscan/internal/archive"
	"github.com/folioscan/folioscan/internal/config"
	"github.com/folioscan/folioscan/internal/dedup"
	"github.com/folioscan/folioscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner replays canned git output for every project
type fakeRunner struct{}

func (fakeRunner) ShortLog(_ context.Context, _ string) (string, error) {
	return "     6\tAna Lima <ana@x.com>\n     4\tBen Cole <ben@x.com>\n", nil
}

func (fakeRunner) NumStat(_ context.Context, _ string) (string, error) {
	return "Ana Lima <ana@x.com>\n120\t30\tsrc/app.py\nBen Cole <ben@x.com>\n40\t10\tsrc/util.py\n", nil
}

func (fakeRunner) ActivityLog(_ context.Context, _ string) (string, error) {
	return "aaaaaaa1|Ana Lima|ana@x.com|2023-04-01 10:00:00 +0000|Add importer\n" +
		"120\t30\tsrc/app.py\n" +
		"aaaaaaa2|Ben Cole|ben@x.com|2023-04-02 10:00:00 +0000|Fix importer\n" +
		"40\t10\tsrc/util.py\n", nil
}

func (fakeRunner) FirstCommitUnix(_ context.Context, _ string) (int64, error) {
	return 1_680_000_000, nil
}

func fixtureZip(t *testing.T) []byte {
	t.Helper()
	modified := time.Date(2023, 8, 1, 12, 0, 0, 0, time.UTC)

	entries := map[string]string{
		"api/go.mod":            "module github.com/acme/api\n\ngo 1.22\n",
		"api/.git/HEAD":         "ref: refs/heads/main\n",
		"api/main.go":           "package main\n\nimport \"net/http\"\n\nfunc main() {\n\thttp.ListenAndServe(\":8080\", nil)\n}\n",
		"api/main_copy.go":      "package main\n\nimport \"net/http\"\n\nfunc main() {\n\thttp.ListenAndServe(\":8080\", nil)\n}\n",
		"api/package-lock.json": "{\n  \"lockfileVersion\": 3\n}\n",
		"web/package.json":      "{\"name\": \"storefront\"}",
		"web/index.html":        "<!doctype html>\n<html>\n<body>\n<p>hello</p>\n</body>\n</html>\n",
		"notes.txt":             "line 1\nline 2\nline 3\nline 4\nline 5\n",
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newTestPipeline(store dedup.Store) *Pipeline {
	settings := config.DefaultSettings()
	settings.GitWorkers = 1
	settings.HashWorkers = 1
	return New(settings, config.DefaultScanConfig(),
		WithStore(store),
		WithRunner(fakeRunner{}),
		WithVersion("test"),
	)
}

func TestAnalyze_EndToEnd(t *testing.T) {
	pipe := newTestPipeline(dedup.NewMemoryStore())
	payload, err := pipe.Analyze(context.Background(), fixtureZip(t), "portfolio.zip")
	require.NoError(t, err)

	assert.Equal(t, "zip_file", payload.Source)
	require.NotNil(t, payload.Meta)
	assert.Equal(t, "portfolio.zip", payload.Meta.Source)
	assert.Equal(t, "test", payload.Meta.Version)
	assert.NotEmpty(t, payload.Meta.UploadID)
	assert.Equal(t, len(payload.Projects), payload.Meta.Projects)

	// api (git-backed), web, and the unorganized block for notes.txt
	require.Len(t, payload.Projects, 3)
	byID := make(map[int]*types.ProjectPayload)
	for _, p := range payload.Projects {
		byID[p.ID] = p
	}

	api := byID[1]
	require.NotNil(t, api)
	assert.Equal(t, "api", api.Root)
	assert.Equal(t, "api", api.Name) // from go.mod module path
	assert.Equal(t, int64(1_680_000_000), api.CreatedAt)
	assert.True(t, api.Collaborative)
	require.Len(t, api.Contributors, 2)
	assert.Equal(t, "Ana Lima", api.Contributors[0].Name)
	assert.Equal(t, 60.0, api.Contributors[0].PercentOfCommits)

	web := byID[2]
	require.NotNil(t, web)
	assert.Equal(t, "storefront", web.Name)
	assert.False(t, web.Collaborative)

	unorganized := byID[0]
	require.NotNil(t, unorganized)
	assert.Len(t, unorganized.Files[types.FileTypeContent], 1)

	// Identical files within one upload: the later path links the earlier
	var copies []*types.CodeFile
	for _, r := range api.Files[types.FileTypeCode] {
		if code, ok := r.(*types.CodeFile); ok && code.FilePath != "api/go.mod" {
			copies = append(copies, code)
		}
	}
	require.Len(t, copies, 2)
	assert.False(t, copies[0].IsDuplicate)
	assert.True(t, copies[1].IsDuplicate)
	assert.Equal(t, "api/main.go", copies[1].OriginalFile)

	// Lockfile dropped by the human filter
	assert.Equal(t, 1, payload.Overall.Totals.Dropped)

	// Skills come out ranked
	require.NotNil(t, payload.Skills)
	assert.NotEmpty(t, payload.Skills.Chronological)
	assert.Equal(t, 1, payload.Skills.Chronological[0].Rank)
	require.Contains(t, payload.Skills.Skills, "Web Backend")
}

func TestAnalyze_DedupAcrossUploads(t *testing.T) {
	store := dedup.NewMemoryStore()
	data := fixtureZip(t)

	pipe := newTestPipeline(store)
	_, err := pipe.Analyze(context.Background(), data, "first.zip")
	require.NoError(t, err)

	payload, err := pipe.Analyze(context.Background(), data, "second.zip")
	require.NoError(t, err)

	for _, proj := range payload.Projects {
		for _, files := range proj.Files {
			for _, r := range files {
				if r.Info().Skipped {
					continue
				}
				assert.True(t, r.Info().IsDuplicate, r.Path())
			}
		}
	}
}

func TestAnalyze_InvalidArchive(t *testing.T) {
	pipe := newTestPipeline(dedup.NewMemoryStore())

	_, err := pipe.Analyze(context.Background(), []byte("not a zip"), "broken.zip")
	assert.ErrorIs(t, err, archive.ErrInvalidArchive)
}

func TestAnalyze_FilterUsername(t *testing.T) {
	settings := config.DefaultSettings()
	settings.GitWorkers = 1
	settings.HashWorkers = 1
	settings.FilterUsername = "ana"
	pipe := New(settings, config.DefaultScanConfig(),
		WithStore(dedup.NewMemoryStore()),
		WithRunner(fakeRunner{}),
	)

	payload, err := pipe.Analyze(context.Background(), fixtureZip(t), "portfolio.zip")
	require.NoError(t, err)

	require.NotNil(t, payload.UserContributions)
	assert.Equal(t, "Ana Lima", payload.UserContributions.Name)
	assert.Equal(t, 6, payload.UserContributions.Commits)
	assert.Equal(t, []int{1}, payload.UserContributions.Projects)
}

// failingRunner exercises the per-project degradation path
type failingRunner struct{}

func (failingRunner) ShortLog(_ context.Context, _ string) (string, error) {
	return "", errors.New("git shortlog timed out after 8s")
}
func (failingRunner) NumStat(_ context.Context, _ string) (string, error) {
	return "", errors.New("unreachable")
}
func (failingRunner) ActivityLog(_ context.Context, _ string) (string, error) {
	return "", errors.New("unreachable")
}
func (failingRunner) FirstCommitUnix(_ context.Context, _ string) (int64, error) {
	return 0, errors.New("unreachable")
}

func TestAnalyze_GitFailureDoesNotAbort(t *testing.T) {
	settings := config.DefaultSettings()
	settings.GitWorkers = 1
	settings.HashWorkers = 1
	pipe := New(settings, config.DefaultScanConfig(),
		WithStore(dedup.NewMemoryStore()),
		WithRunner(failingRunner{}),
	)

	payload, err := pipe.Analyze(context.Background(), fixtureZip(t), "portfolio.zip")
	require.NoError(t, err)

	var api *types.ProjectPayload
	for _, p := range payload.Projects {
		if p.ID == 1 {
			api = p
		}
	}
	require.NotNil(t, api)
	assert.Contains(t, api.GitError, "timed out")
	assert.Empty(t, api.Contributors)
	assert.False(t, api.Collaborative)
}
