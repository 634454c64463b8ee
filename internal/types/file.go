package types

// FileType classifies a scanned file by what kind of content it holds
type FileType string

const (
	FileTypeCode    FileType = "code"
	FileTypeContent FileType = "content"
	FileTypeImage   FileType = "image"
	FileTypeUnknown FileType = "unknown"
)

// Skip reason codes recorded on files that are marked but not analyzed
const (
	SkipTooFewLines = "too_few_lines"
	SkipExcludedDir = "excluded_dir"
	SkipUnreadable  = "unreadable"
)

// Drop reason codes recorded by the human-file filter
const (
	DropLockfile  = "lockfile"
	DropMinified  = "minified"
	DropSourceMap = "source_map"
	DropGenerated = "generated"
)

// Metrics holds size measurements for a scanned file. Which fields are
// populated depends on the file type: code files get line counts (plus
// code/comment/blank splits when the analyzer recognizes the language),
// content files get character counts, images get byte sizes.
type Metrics struct {
	Lines    int   `json:"lines,omitempty"`
	Code     int   `json:"code,omitempty"`
	Comments int   `json:"comments,omitempty"`
	Blanks   int   `json:"blanks,omitempty"`
	Chars    int   `json:"chars,omitempty"`
	Bytes    int64 `json:"bytes,omitempty"`
}

// ScanResult is the common view over the per-type file result variants
type ScanResult interface {
	Path() string
	ProjectTag() int
	Type() FileType
	Metrics() Metrics

	// Info exposes the shared mutable record (hash, skip and duplicate
	// state) so downstream stages can annotate without type switches.
	Info() *FileInfo
}

// FileInfo is the shared portion of every scan result variant
type FileInfo struct {
	FilePath     string `json:"path"` // posix-relative to the upload root
	Tag          int    `json:"project_tag"`
	ContentHash  string `json:"content_hash,omitempty"`
	Skipped      bool   `json:"skipped,omitempty"`
	SkipReason   string `json:"skip_reason,omitempty"`
	IsDuplicate  bool   `json:"is_duplicate"`
	OriginalFile string `json:"original_file,omitempty"`
}

func (f *FileInfo) Path() string    { return f.FilePath }
func (f *FileInfo) ProjectTag() int { return f.Tag }
func (f *FileInfo) Info() *FileInfo { return f }

// CodeFile is the scan result for source code files
type CodeFile struct {
	FileInfo `yaml:",inline"`
	Language string `json:"language,omitempty"`
	Lines    int    `json:"lines"`
	Code     int    `json:"code,omitempty"`
	Comments int    `json:"comments,omitempty"`
	Blanks   int    `json:"blanks,omitempty"`
}

func (f *CodeFile) Type() FileType { return FileTypeCode }
func (f *CodeFile) Metrics() Metrics {
	return Metrics{Lines: f.Lines, Code: f.Code, Comments: f.Comments, Blanks: f.Blanks}
}

// ContentFile is the scan result for prose/document files
type ContentFile struct {
	FileInfo `yaml:",inline"`
	Lines    int `json:"lines"`
	Chars    int `json:"chars"`
}

func (f *ContentFile) Type() FileType   { return FileTypeContent }
func (f *ContentFile) Metrics() Metrics { return Metrics{Lines: f.Lines, Chars: f.Chars} }

// ImageFile is the scan result for image files
type ImageFile struct {
	FileInfo `yaml:",inline"`
	Bytes    int64 `json:"bytes"`
}

func (f *ImageFile) Type() FileType   { return FileTypeImage }
func (f *ImageFile) Metrics() Metrics { return Metrics{Bytes: f.Bytes} }

// UnknownFile is the scan result for files outside all extension tables
type UnknownFile struct {
	FileInfo `yaml:",inline"`
	Bytes    int64 `json:"bytes"`
}

func (f *UnknownFile) Type() FileType   { return FileTypeUnknown }
func (f *UnknownFile) Metrics() Metrics { return Metrics{Bytes: f.Bytes} }
