package scanner

import (
	"path"
	"strings"

	"log/slog"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/folioscan/folioscan/internal/types"
)

// lockfileNames are dependency lockfiles, generated by package managers
var lockfileNames = map[string]bool{
	"package-lock.json": true,
	"yarn.lock":         true,
	"pnpm-lock.yaml":    true,
	"Cargo.lock":        true,
	"poetry.lock":       true,
	"Pipfile.lock":      true,
	"composer.lock":     true,
	"Gemfile.lock":      true,
	"go.sum":            true,
}

// minified/bundled artifact name patterns
var minifiedPatterns = []string{
	"*.min.js",
	"*.min.css",
	"*.bundle.js",
	"*-bundle.js",
}

// generated-code name patterns
var generatedPatterns = []string{
	"*.pb.go",
	"*_pb2.py",
	"*_pb2_grpc.py",
	"*.g.dart",
	"*.generated.ts",
}

// generatedMarkers are searched in the first kilobyte of code files
var generatedMarkers = []string{
	"Code generated by",
	"@generated",
	"DO NOT EDIT",
	"AUTO-GENERATED",
	"automatically generated",
}

// HumanFilter removes auto-generated artifacts from scan results so only
// human-authored files are surfaced or considered for deduplication.
type HumanFilter struct {
	provider types.Provider
}

// NewHumanFilter creates a filter; the provider is used to sniff file
// heads for generated-code markers.
func NewHumanFilter(provider types.Provider) *HumanFilter {
	return &HumanFilter{provider: provider}
}

// Filter partitions results into kept and dropped. Dropped results carry
// their drop reason in SkipReason.
func (f *HumanFilter) Filter(results []types.ScanResult) (kept, dropped []types.ScanResult) {
	for _, result := range results {
		if reason := f.dropReason(result); reason != "" {
			result.Info().SkipReason = reason
			dropped = append(dropped, result)
			continue
		}
		kept = append(kept, result)
	}
	if len(dropped) > 0 {
		slog.Debug("Filtered generated files", "dropped", len(dropped), "kept", len(kept))
	}
	return kept, dropped
}

func (f *HumanFilter) dropReason(result types.ScanResult) string {
	name := path.Base(result.Path())

	if lockfileNames[name] {
		return types.DropLockfile
	}
	if strings.HasSuffix(name, ".map") {
		return types.DropSourceMap
	}
	for _, pattern := range minifiedPatterns {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return types.DropMinified
		}
	}
	for _, pattern := range generatedPatterns {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return types.DropGenerated
		}
	}

	// Content marker check only pays off for code files; skip-marked
	// records (excluded dirs, unreadable) were never read and stay that way
	if result.Type() == types.FileTypeCode && !result.Info().Skipped && f.hasGeneratedMarker(result.Path()) {
		return types.DropGenerated
	}

	return ""
}

func (f *HumanFilter) hasGeneratedMarker(rel string) bool {
	content, err := f.provider.ReadFile(rel)
	if err != nil {
		return false
	}
	head := content
	if len(head) > 1024 {
		head = head[:1024]
	}
	text := string(head)
	for _, marker := range generatedMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
