// Package scanner walks an extracted upload tree, classifies every file by
// extension, computes size metrics and content hashes, and assigns each
// file to a discovered project.
package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-enry/go-enry/v2"

	"github.com/folioscan/folioscan/internal/codestats"
	"github.com/folioscan/folioscan/internal/config"
	"github.com/folioscan/folioscan/internal/discovery"
	"github.com/folioscan/folioscan/internal/types"
)

// RawReader reads original archive bytes for a posix-relative path.
// Hashing prefers these bytes over the extracted copy so the hash matches
// the upload exactly.
type RawReader interface {
	ReadEntry(rel string) ([]byte, error)
}

// Scanner handles tree walking and file classification
type Scanner struct {
	provider        types.Provider
	cfg             *config.ScanConfig
	tags            *discovery.TagIndex
	raw             RawReader // may be nil
	excludePatterns []string
	workers         int
}

// Option configures a Scanner
type Option func(*Scanner)

// WithRawReader makes the scanner hash original archive bytes
func WithRawReader(raw RawReader) Option {
	return func(s *Scanner) { s.raw = raw }
}

// WithExcludePatterns adds user glob patterns on top of the configured
// excluded directory set
func WithExcludePatterns(patterns []string) Option {
	return func(s *Scanner) { s.excludePatterns = patterns }
}

// WithWorkers bounds the hashing/metrics worker pool
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// NewScanner creates a scanner over an extracted tree
func NewScanner(provider types.Provider, cfg *config.ScanConfig, tags *discovery.TagIndex, opts ...Option) *Scanner {
	s := &Scanner{
		provider: provider,
		cfg:      cfg,
		tags:     tags,
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks the tree and returns one result per file, sorted by path.
// Files not analyzed (too few lines, unreadable, under an excluded
// directory) are returned with their skip reason set; excluded-directory
// files carry no hash or metrics, only the record.
func (s *Scanner) Scan() ([]types.ScanResult, error) {
	start := time.Now()

	var paths, excluded []string
	if err := s.collect(".", &paths, &excluded); err != nil {
		return nil, err
	}
	slog.Debug("Collected files", "count", len(paths), "excluded", len(excluded), "duration", time.Since(start))

	results := make([]types.ScanResult, len(paths), len(paths)+len(excluded))

	// Metrics and hashing are independent per file; order is restored by
	// writing into the index slot, so duplicate/original selection stays
	// deterministic downstream.
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.processFile(paths[i])
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, rel := range excluded {
		results = append(results, s.excludedResult(rel))
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path() < results[j].Path() })

	slog.Debug("Scanned files", "count", len(results), "duration", time.Since(start))
	return results, nil
}

// collect gathers posix-relative file paths. Files under configured
// excluded directory names land in excluded and are later recorded as
// skipped; user glob matches are omitted entirely. ".git" is walked: git
// analysis downstream depends on it.
func (s *Scanner) collect(dir string, paths, excluded *[]string) error {
	files, err := s.provider.ListDir(dir)
	if err != nil {
		if dir == "." {
			return err
		}
		slog.Debug("Skipping unreadable directory", "path", dir, "error", err)
		return nil
	}

	for _, file := range files {
		rel := path.Join(dir, file.Name)
		if file.Type == "dir" {
			if s.matchesExclude(file.Name, rel) {
				continue
			}
			if s.cfg.IsExcludedDir(file.Name) {
				s.collectExcluded(rel, excluded)
				continue
			}
			if err := s.collect(rel, paths, excluded); err != nil {
				return err
			}
			continue
		}
		if s.matchesExclude(file.Name, rel) {
			continue
		}
		*paths = append(*paths, rel)
	}
	return nil
}

// collectExcluded records every file under an excluded directory so the
// payload can report it with a reason. Only the listing is paid here;
// contents are never read or hashed.
func (s *Scanner) collectExcluded(dir string, excluded *[]string) {
	files, err := s.provider.ListDir(dir)
	if err != nil {
		slog.Debug("Skipping unreadable directory", "path", dir, "error", err)
		return
	}
	for _, file := range files {
		rel := path.Join(dir, file.Name)
		if file.Type == "dir" {
			s.collectExcluded(rel, excluded)
			continue
		}
		*excluded = append(*excluded, rel)
	}
}

// excludedResult builds a zero-metric skip record for an excluded file
func (s *Scanner) excludedResult(rel string) types.ScanResult {
	info := types.FileInfo{
		FilePath:   rel,
		Tag:        s.tags.TagFor(rel),
		Skipped:    true,
		SkipReason: types.SkipExcludedDir,
	}
	return zeroResult(s.cfg.ClassifyExtension(path.Base(rel)), info)
}

func (s *Scanner) matchesExclude(name, rel string) bool {
	for _, pattern := range s.excludePatterns {
		if matched, err := doublestar.Match(pattern, rel); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

func (s *Scanner) processFile(rel string) types.ScanResult {
	name := path.Base(rel)
	fileType := s.cfg.ClassifyExtension(name)

	content, readErr := s.readContent(rel)

	// Unknown extensions get one more chance: content-based language
	// detection catches extensionless scripts and unusual code suffixes.
	if fileType == types.FileTypeUnknown && readErr == nil {
		if lang := enry.GetLanguage(name, content); lang != "" &&
			enry.GetLanguageType(lang) == enry.Programming {
			fileType = types.FileTypeCode
		}
	}

	info := types.FileInfo{
		FilePath: rel,
		Tag:      s.tags.TagFor(rel),
	}

	if readErr != nil {
		slog.Debug("Unreadable file", "path", rel, "error", readErr)
		info.Skipped = true
		info.SkipReason = types.SkipUnreadable
		return zeroResult(fileType, info)
	}

	sum := sha256.Sum256(content)
	info.ContentHash = hex.EncodeToString(sum[:])

	switch fileType {
	case types.FileTypeCode:
		stats := codestats.Count(name, content)
		if stats.Lines < s.cfg.MinLines {
			info.Skipped = true
			info.SkipReason = types.SkipTooFewLines
		}
		return &types.CodeFile{
			FileInfo: info,
			Language: s.languageFor(name, content),
			Lines:    stats.Lines,
			Code:     stats.Code,
			Comments: stats.Comments,
			Blanks:   stats.Blanks,
		}
	case types.FileTypeContent:
		lines := codestats.CountLines(content)
		if lines < s.cfg.MinLines {
			info.Skipped = true
			info.SkipReason = types.SkipTooFewLines
		}
		return &types.ContentFile{
			FileInfo: info,
			Lines:    lines,
			Chars:    len([]rune(string(content))),
		}
	case types.FileTypeImage:
		return &types.ImageFile{FileInfo: info, Bytes: int64(len(content))}
	default:
		return &types.UnknownFile{FileInfo: info, Bytes: int64(len(content))}
	}
}

// readContent prefers the original archive bytes over the extracted copy
func (s *Scanner) readContent(rel string) ([]byte, error) {
	if s.raw != nil {
		if content, err := s.raw.ReadEntry(rel); err == nil {
			return content, nil
		}
	}
	return s.provider.ReadFile(rel)
}

func (s *Scanner) languageFor(name string, content []byte) string {
	if lang := s.cfg.LanguageForFile(name); lang != "" {
		return lang
	}
	return enry.GetLanguage(name, content)
}

func zeroResult(fileType types.FileType, info types.FileInfo) types.ScanResult {
	switch fileType {
	case types.FileTypeCode:
		return &types.CodeFile{FileInfo: info}
	case types.FileTypeContent:
		return &types.ContentFile{FileInfo: info}
	case types.FileTypeImage:
		return &types.ImageFile{FileInfo: info}
	default:
		return &types.UnknownFile{FileInfo: info}
	}
}

// Normalize converts an OS path to the posix-relative form used everywhere
func Normalize(p string) string {
	return strings.TrimPrefix(filepath.ToSlash(p), "./")
}
