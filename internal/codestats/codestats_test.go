package codestats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCount_RecognizedLanguage(t *testing.T) {
	content := []byte("package main\n\n// entry point\nfunc main() {\n\tprintln(1)\n}\n")

	stats := Count("main.go", content)

	assert.Equal(t, 6, stats.Lines)
	assert.Equal(t, 4, stats.Code)
	assert.Equal(t, 1, stats.Comments)
	assert.Equal(t, 1, stats.Blanks)
}

func TestCount_UnknownLanguageFallsBackToLines(t *testing.T) {
	content := []byte("alpha\nbeta\ngamma\n")

	stats := Count("data.xyzqw", content)

	assert.Equal(t, 3, stats.Lines)
	assert.Zero(t, stats.Code)
}

func TestCount_Empty(t *testing.T) {
	assert.Equal(t, FileStats{}, Count("main.go", nil))
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(nil))
	assert.Equal(t, 1, CountLines([]byte("one line, no newline")))
	assert.Equal(t, 2, CountLines([]byte("one\ntwo\n")))
	assert.Equal(t, 3, CountLines([]byte("one\ntwo\nthree")))
}
