// Package codestats provides per-file line statistics (code, comments,
// blanks) backed by SCC's language-aware counters.
package codestats

import (
	"bytes"
	"sync"

	"github.com/boyter/scc/v3/processor"
)

var initOnce sync.Once

// FileStats holds line statistics for a single file
type FileStats struct {
	Lines    int
	Code     int
	Comments int
	Blanks   int
}

// Count analyzes file content. When SCC recognizes the language it returns
// the full code/comment/blank split; otherwise only Lines is populated,
// from a raw newline count.
func Count(filename string, content []byte) FileStats {
	if len(content) == 0 {
		return FileStats{}
	}

	initOnce.Do(func() {
		processor.ProcessConstants()
	})

	sccLangs, _ := processor.DetectLanguage(filename)
	if len(sccLangs) == 0 {
		return FileStats{Lines: CountLines(content)}
	}

	filejob := &processor.FileJob{
		Filename: filename,
		Language: sccLangs[0],
		Content:  content,
		Bytes:    int64(len(content)),
	}
	processor.CountStats(filejob)

	return FileStats{
		Lines:    int(filejob.Lines),
		Code:     int(filejob.Code),
		Comments: int(filejob.Comment),
		Blanks:   int(filejob.Blank),
	}
}

// CountLines counts raw lines: newline count plus an unterminated final line
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	lines := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		lines++
	}
	return lines
}
