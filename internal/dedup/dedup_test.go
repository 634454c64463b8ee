package dedup

import (
	"context"
	"testing"

	"github.com/folioscan/folioscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileWithHash(path, hash string) types.ScanResult {
	return &types.CodeFile{FileInfo: types.FileInfo{FilePath: path, ContentHash: hash}}
}

func TestApply_MarksDuplicatesWithinUpload(t *testing.T) {
	store := NewMemoryStore()
	dd := NewDeduplicator(store, 1, "upload-1")

	results := []types.ScanResult{
		fileWithHash("a/copy.py", "hash-x"),
		fileWithHash("b/copy.py", "hash-x"),
		fileWithHash("c/other.py", "hash-y"),
	}
	require.NoError(t, dd.Apply(context.Background(), results))

	// Path order decides the original: a/copy.py comes first
	assert.False(t, results[0].Info().IsDuplicate)
	assert.True(t, results[1].Info().IsDuplicate)
	assert.Equal(t, "a/copy.py", results[1].Info().OriginalFile)
	assert.False(t, results[2].Info().IsDuplicate)
}

func TestApply_MarksDuplicatesAcrossUploads(t *testing.T) {
	store := NewMemoryStore()

	first := []types.ScanResult{fileWithHash("old/main.py", "hash-x")}
	require.NoError(t, NewDeduplicator(store, 1, "upload-1").Apply(context.Background(), first))

	second := []types.ScanResult{fileWithHash("new/main.py", "hash-x")}
	require.NoError(t, NewDeduplicator(store, 1, "upload-2").Apply(context.Background(), second))

	assert.True(t, second[0].Info().IsDuplicate)
	assert.Equal(t, "old/main.py", second[0].Info().OriginalFile)
}

func TestApply_NeverCrossesUsers(t *testing.T) {
	store := NewMemoryStore()

	mine := []types.ScanResult{fileWithHash("main.py", "hash-x")}
	require.NoError(t, NewDeduplicator(store, 1, "upload-1").Apply(context.Background(), mine))

	theirs := []types.ScanResult{fileWithHash("main.py", "hash-x")}
	require.NoError(t, NewDeduplicator(store, 2, "upload-2").Apply(context.Background(), theirs))

	assert.False(t, theirs[0].Info().IsDuplicate)
}

func TestApply_LeavesSkippedAndHashlessAlone(t *testing.T) {
	store := NewMemoryStore()
	dd := NewDeduplicator(store, 1, "upload-1")

	skipped := &types.CodeFile{FileInfo: types.FileInfo{
		FilePath: "tiny.py", ContentHash: "hash-x", Skipped: true,
	}}
	hashless := &types.CodeFile{FileInfo: types.FileInfo{FilePath: "unread.py"}}
	normal := fileWithHash("real.py", "hash-x")

	require.NoError(t, dd.Apply(context.Background(), []types.ScanResult{skipped, hashless, normal}))

	assert.False(t, skipped.IsDuplicate)
	assert.False(t, hashless.Info().IsDuplicate)
	// The skipped file did not claim the hash
	assert.False(t, normal.Info().IsDuplicate)

	again := fileWithHash("again.py", "hash-x")
	require.NoError(t, dd.Apply(context.Background(), []types.ScanResult{again}))
	assert.True(t, again.Info().IsDuplicate)
	assert.Equal(t, "real.py", again.Info().OriginalFile)
}

func TestMemoryStore_FirstRecordWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Record(ctx, 1, FileRef{Path: "first.py", UploadID: "u1", Hash: "h"}))
	require.NoError(t, store.Record(ctx, 1, FileRef{Path: "second.py", UploadID: "u2", Hash: "h"}))

	ref, found, err := store.Lookup(ctx, 1, "h")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "first.py", ref.Path)
}
