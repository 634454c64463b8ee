package discovery

import (
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/folioscan/folioscan/internal/types"
)

// enrichGitInfo fills remote/head metadata for a .git-backed root.
// Best effort: extracted archives often carry partial .git directories,
// so any failure just leaves the fields empty.
func enrichGitInfo(basePath string, project *types.DiscoveredProject) {
	dir := basePath
	if project.Root != "." {
		dir = filepath.Join(basePath, filepath.FromSlash(project.Root))
	}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		return
	}

	if head, err := repo.Head(); err == nil {
		// Short hash (first 7 characters)
		project.HeadCommit = head.Hash().String()[:7]
		if head.Name().IsBranch() {
			project.Branch = head.Name().Short()
		} else {
			project.Branch = "HEAD" // Detached HEAD
		}
	}

	if cfg, err := repo.Config(); err == nil {
		if origin := cfg.Remotes["origin"]; origin != nil && len(origin.URLs) > 0 {
			project.RemoteURL = origin.URLs[0]
		}
	}
}
