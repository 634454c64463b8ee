package archive

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type zipEntry struct {
	name     string
	content  string
	modified time.Time
}

func buildZip(t *testing.T, entries []zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		header := &zip.FileHeader{Name: e.name, Method: zip.Deflate}
		if !e.modified.IsZero() {
			header.Modified = e.modified
		}
		fw, err := w.CreateHeader(header)
		require.NoError(t, err)
		_, err = fw.Write([]byte(e.content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	modified := time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)
	data := buildZip(t, []zipEntry{
		{name: "proj/main.py", content: "print('hi')\n", modified: modified},
		{name: "proj/README.md", content: "# proj\n", modified: modified},
	})

	upload, err := Extract(data)
	require.NoError(t, err)
	defer upload.Close()

	assert.NotEmpty(t, upload.ID)
	assert.DirExists(t, upload.Dir)

	// Raw bytes are kept verbatim
	raw, err := os.ReadFile(upload.RawPath)
	require.NoError(t, err)
	assert.Equal(t, data, raw)

	// Tree holds the expanded entries
	assert.FileExists(t, filepath.Join(upload.TreePath, "proj", "main.py"))
	assert.FileExists(t, filepath.Join(upload.TreePath, "proj", "README.md"))

	// Zip metadata timestamps are recorded per entry
	assert.Equal(t, modified.Unix(), upload.Timestamps["proj/main.py"])

	content, err := upload.ReadEntry("proj/main.py")
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(content))

	_, err = upload.ReadEntry("proj/missing.py")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExtract_EmptyInput(t *testing.T) {
	_, err := Extract(nil)
	assert.ErrorIs(t, err, ErrInvalidArchive)
}

func TestExtract_NotAZip(t *testing.T) {
	_, err := Extract([]byte("definitely not a zip archive"))
	assert.ErrorIs(t, err, ErrInvalidArchive)
}

func TestExtract_NoEntries(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	require.NoError(t, w.Close())

	_, err := Extract(buf.Bytes())
	assert.ErrorIs(t, err, ErrInvalidArchive)
}

func TestExtract_PathTraversal(t *testing.T) {
	data := buildZip(t, []zipEntry{
		{name: "../evil.txt", content: "nope"},
	})
	_, err := Extract(data)
	assert.ErrorIs(t, err, ErrPathTraversal)

	data = buildZip(t, []zipEntry{
		{name: "/abs.txt", content: "nope"},
	})
	_, err = Extract(data)
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestExtract_BackslashSeparators(t *testing.T) {
	data := buildZip(t, []zipEntry{
		{name: `proj\app.js`, content: "console.log(1)\n"},
	})

	upload, err := Extract(data)
	require.NoError(t, err)
	defer upload.Close()

	assert.FileExists(t, filepath.Join(upload.TreePath, "proj", "app.js"))

	content, err := upload.ReadEntry("proj/app.js")
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)\n", string(content))
}

func TestUpload_CloseIsIdempotent(t *testing.T) {
	data := buildZip(t, []zipEntry{{name: "a.txt", content: "hello world\n"}})
	upload, err := Extract(data)
	require.NoError(t, err)

	dir := upload.Dir
	require.NoError(t, upload.Close())
	assert.NoDirExists(t, dir)
	require.NoError(t, upload.Close())
}
