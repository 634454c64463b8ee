package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/folioscan/folioscan/internal/types"
	"github.com/folioscan/folioscan/internal/validation"
)

//go:embed scan_defaults.yaml
var scanDefaultsData []byte

// activityOrder is the priority in which activity signals are checked.
// Test beats documentation beats design beats configuration; anything
// without a signal is code.
var activityOrder = []types.ActivityType{
	types.ActivityTest,
	types.ActivityDocumentation,
	types.ActivityDesign,
	types.ActivityConfiguration,
}

// ScanConfigFile is the on-disk shape of a scan configuration
type ScanConfigFile struct {
	Scan ScanConfigSection `yaml:"scan" json:"scan"`
}

// ScanConfigSection contains the data tables the pipeline consumes
type ScanConfigSection struct {
	MinLines        int                 `yaml:"min_lines,omitempty" json:"min_lines,omitempty"`
	ExcludedDirs    []string            `yaml:"excluded_dirs,omitempty" json:"excluded_dirs,omitempty"`
	VCSMarkers      []string            `yaml:"vcs_markers,omitempty" json:"vcs_markers,omitempty"`
	ManifestMarkers []string            `yaml:"manifest_markers,omitempty" json:"manifest_markers,omitempty"`
	Extensions      ExtensionTables     `yaml:"extensions,omitempty" json:"extensions,omitempty"`
	Languages       map[string]string   `yaml:"languages,omitempty" json:"languages,omitempty"`
	Activity        ActivityTables      `yaml:"activity,omitempty" json:"activity,omitempty"`
}

// ExtensionTables maps file categories to extension lists
type ExtensionTables struct {
	Code    []string `yaml:"code,omitempty" json:"code,omitempty"`
	Content []string `yaml:"content,omitempty" json:"content,omitempty"`
	Image   []string `yaml:"image,omitempty" json:"image,omitempty"`
}

// ActivityTables holds the commit activity classification tables
type ActivityTables struct {
	Extensions map[string][]string `yaml:"extensions,omitempty" json:"extensions,omitempty"`
	Keywords   map[string][]string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// ScanConfig is the compiled, lookup-ready configuration passed to the
// pipeline stages. Tables are data, not code: constructors receive this
// object and never consult package-level state.
type ScanConfig struct {
	MinLines        int
	ExcludedDirs    map[string]bool
	VCSMarkers      []string
	ManifestMarkers []string

	codeExts    map[string]bool
	contentExts map[string]bool
	imageExts   map[string]bool
	languages   map[string]string

	activityExts     map[types.ActivityType][]string
	activityKeywords map[types.ActivityType][]string
}

// DefaultScanConfig compiles the embedded default tables
func DefaultScanConfig() *ScanConfig {
	cfg, err := compileScanConfig(scanDefaultsData)
	if err != nil {
		// The embedded defaults are validated by tests; a parse failure
		// here is a build defect, not a runtime condition.
		panic(fmt.Sprintf("embedded scan defaults are invalid: %v", err))
	}
	return cfg
}

// LoadScanConfig loads a scan configuration file, filling unset sections
// from the embedded defaults. An empty path returns the defaults.
func LoadScanConfig(path string) (*ScanConfig, error) {
	if path == "" {
		return DefaultScanConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan config: %w", err)
	}

	return compileScanConfig(data)
}

func compileScanConfig(data []byte) (*ScanConfig, error) {
	// Validate against the schema before decoding into typed structs
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse scan config: %w", err)
	}
	if err := validation.ValidateJSON("scan-config.json", raw); err != nil {
		return nil, fmt.Errorf("scan config rejected: %w", err)
	}

	var file ScanConfigFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scan config: %w", err)
	}

	section := file.Scan
	defaults := defaultSection()

	if section.MinLines == 0 {
		section.MinLines = defaults.MinLines
	}
	if len(section.ExcludedDirs) == 0 {
		section.ExcludedDirs = defaults.ExcludedDirs
	}
	if len(section.VCSMarkers) == 0 {
		section.VCSMarkers = defaults.VCSMarkers
	}
	if len(section.ManifestMarkers) == 0 {
		section.ManifestMarkers = defaults.ManifestMarkers
	}
	if len(section.Extensions.Code) == 0 {
		section.Extensions.Code = defaults.Extensions.Code
	}
	if len(section.Extensions.Content) == 0 {
		section.Extensions.Content = defaults.Extensions.Content
	}
	if len(section.Extensions.Image) == 0 {
		section.Extensions.Image = defaults.Extensions.Image
	}
	if len(section.Languages) == 0 {
		section.Languages = defaults.Languages
	}
	if len(section.Activity.Extensions) == 0 {
		section.Activity.Extensions = defaults.Activity.Extensions
	}
	if len(section.Activity.Keywords) == 0 {
		section.Activity.Keywords = defaults.Activity.Keywords
	}

	cfg := &ScanConfig{
		MinLines:         section.MinLines,
		ExcludedDirs:     toSet(section.ExcludedDirs),
		VCSMarkers:       section.VCSMarkers,
		ManifestMarkers:  section.ManifestMarkers,
		codeExts:         toSet(section.Extensions.Code),
		contentExts:      toSet(section.Extensions.Content),
		imageExts:        toSet(section.Extensions.Image),
		languages:        lowerKeys(section.Languages),
		activityExts:     make(map[types.ActivityType][]string),
		activityKeywords: make(map[types.ActivityType][]string),
	}

	for name, suffixes := range section.Activity.Extensions {
		cfg.activityExts[types.ActivityType(name)] = lowerAll(suffixes)
	}
	for name, keywords := range section.Activity.Keywords {
		cfg.activityKeywords[types.ActivityType(name)] = lowerAll(keywords)
	}

	return cfg, nil
}

var cachedDefaults *ScanConfigSection

func defaultSection() *ScanConfigSection {
	if cachedDefaults != nil {
		return cachedDefaults
	}
	var file ScanConfigFile
	if err := yaml.Unmarshal(scanDefaultsData, &file); err != nil {
		panic(fmt.Sprintf("embedded scan defaults are invalid: %v", err))
	}
	cachedDefaults = &file.Scan
	return cachedDefaults
}

// ClassifyExtension maps a file name to its category via the extension
// tables. Unknown extensions return FileTypeUnknown; the scanner may then
// fall back to content-based language detection.
func (c *ScanConfig) ClassifyExtension(name string) types.FileType {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case c.codeExts[ext]:
		return types.FileTypeCode
	case c.contentExts[ext]:
		return types.FileTypeContent
	case c.imageExts[ext]:
		return types.FileTypeImage
	default:
		return types.FileTypeUnknown
	}
}

// LanguageForFile returns the configured language for a file name, or ""
func (c *ScanConfig) LanguageForFile(name string) string {
	return c.languages[strings.ToLower(filepath.Ext(name))]
}

// LanguageForExtension returns the configured language for an extension
// (leading dot included), or ""
func (c *ScanConfig) LanguageForExtension(ext string) string {
	return c.languages[strings.ToLower(ext)]
}

// IsExcludedDir reports whether a directory name is in the excluded set.
// ".git" is never excluded: downstream git analysis needs it walked.
func (c *ScanConfig) IsExcludedDir(name string) bool {
	return c.ExcludedDirs[strings.ToLower(name)]
}

// MatchesManifest reports whether a file name matches any manifest marker
// pattern (markers may be globs, e.g. "README*").
func (c *ScanConfig) MatchesManifest(name string) bool {
	for _, pattern := range c.ManifestMarkers {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// IsVCSMarker reports whether a directory name is a VCS marker
func (c *ScanConfig) IsVCSMarker(name string) bool {
	for _, marker := range c.VCSMarkers {
		if name == marker {
			return true
		}
	}
	return false
}

// ActivityForFile checks a file name against the activity suffix tables in
// priority order. Returns the matched type and true, or ("", false).
func (c *ScanConfig) ActivityForFile(name string) (types.ActivityType, bool) {
	lower := strings.ToLower(name)
	for _, activity := range activityOrder {
		for _, suffix := range c.activityExts[activity] {
			if strings.HasSuffix(lower, suffix) {
				return activity, true
			}
		}
	}
	return "", false
}

// ActivityForMessage checks commit message words against the keyword
// tables in priority order. Returns the matched type and true, or ("", false).
func (c *ScanConfig) ActivityForMessage(message string) (types.ActivityType, bool) {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}
	for _, activity := range activityOrder {
		for _, keyword := range c.activityKeywords[activity] {
			if wordSet[keyword] {
				return activity, true
			}
		}
	}
	return "", false
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

func lowerAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = strings.ToLower(item)
	}
	return out
}
