// Package discovery finds embedded project roots inside an extracted
// upload and assigns each one a stable numeric tag.
package discovery

import (
	"path"
	"sort"
	"time"

	"log/slog"

	"github.com/folioscan/folioscan/internal/config"
	"github.com/folioscan/folioscan/internal/types"
)

// Discoverer walks an extracted tree looking for project-root markers
type Discoverer struct {
	provider types.Provider
	cfg      *config.ScanConfig
}

// NewDiscoverer creates a discoverer over a provider rooted at the
// extracted tree.
func NewDiscoverer(provider types.Provider, cfg *config.ScanConfig) *Discoverer {
	return &Discoverer{provider: provider, cfg: cfg}
}

// Discover returns all project roots with sequential tags starting at 1.
// Candidates are sorted lexicographically by path before tags are
// assigned, so tags are stable across runs over the same archive.
func (d *Discoverer) Discover() ([]types.DiscoveredProject, error) {
	start := time.Now()

	var candidates []types.DiscoveredProject
	if err := d.walk(".", &candidates); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Root < candidates[j].Root
	})
	for i := range candidates {
		candidates[i].Tag = i + 1
	}

	for i := range candidates {
		if candidates[i].HasGit {
			enrichGitInfo(d.provider.GetBasePath(), &candidates[i])
		}
	}

	slog.Debug("Discovered projects", "count", len(candidates), "duration", time.Since(start))
	return candidates, nil
}

func (d *Discoverer) walk(dir string, found *[]types.DiscoveredProject) error {
	files, err := d.provider.ListDir(dir)
	if err != nil {
		return err
	}

	var markers []string
	hasGit := false

	for _, file := range files {
		switch file.Type {
		case "dir":
			if d.cfg.IsVCSMarker(file.Name) {
				markers = append(markers, file.Name)
				if file.Name == ".git" {
					hasGit = true
				}
			}
		case "file":
			if d.cfg.MatchesManifest(file.Name) {
				markers = append(markers, file.Name)
			}
		}
	}

	if len(markers) > 0 {
		*found = append(*found, types.DiscoveredProject{
			Root:    dir,
			Markers: markers,
			HasGit:  hasGit,
		})
	}

	for _, file := range files {
		if file.Type != "dir" {
			continue
		}
		// Never search for roots inside VCS marker directories, and stay
		// out of dependency/build trees full of third-party manifests.
		if d.cfg.IsVCSMarker(file.Name) || d.cfg.IsExcludedDir(file.Name) {
			continue
		}
		sub := path.Join(dir, file.Name)
		if err := d.walk(sub, found); err != nil {
			// A single unreadable directory should not stop discovery
			slog.Debug("Skipping unreadable directory", "path", sub, "error", err)
			continue
		}
	}

	return nil
}

// TagIndex answers "which project owns this path" by longest-root match
type TagIndex struct {
	projects []types.DiscoveredProject
}

// NewTagIndex builds an index over discovered projects
func NewTagIndex(projects []types.DiscoveredProject) *TagIndex {
	return &TagIndex{projects: projects}
}

// TagFor returns the tag of the longest discovered root that is an
// ancestor of (or equal to) the given posix-relative path, or
// UnorganizedTag when no root matches.
func (t *TagIndex) TagFor(relPath string) int {
	bestTag := types.UnorganizedTag
	bestLen := -1
	for _, project := range t.projects {
		if !underRoot(project.Root, relPath) {
			continue
		}
		if len(project.Root) > bestLen {
			bestLen = len(project.Root)
			bestTag = project.Tag
		}
	}
	return bestTag
}

// Projects returns the indexed projects in tag order
func (t *TagIndex) Projects() []types.DiscoveredProject {
	return t.projects
}

func underRoot(root, relPath string) bool {
	if root == "." {
		return true
	}
	if relPath == root {
		return true
	}
	return len(relPath) > len(root) && relPath[:len(root)] == root && relPath[len(root)] == '/'
}
