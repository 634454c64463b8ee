package types

// UnorganizedTag is the reserved project tag for files that do not fall
// under any discovered project root.
const UnorganizedTag = 0

// DiscoveredProject is one embedded project root found inside an upload.
// Tags are sequential positive integers assigned in lexicographic order of
// the root path, so they are stable across runs over the same archive.
type DiscoveredProject struct {
	Root string `json:"root"` // posix-relative, "" for the upload root itself
	Tag  int    `json:"tag"`

	// Markers that qualified this directory as a root
	Markers []string `json:"markers,omitempty"`

	// HasGit is true when the root directly contains a .git directory
	HasGit bool `json:"has_git,omitempty"`

	// Git metadata for .git-backed roots, best effort
	RemoteURL  string `json:"remote_url,omitempty"`
	HeadCommit string `json:"head_commit,omitempty"`
	Branch     string `json:"branch,omitempty"`
}

// GitInfo contains repository head information for a project root
type GitInfo struct {
	Branch    string `json:"branch,omitempty"`
	Commit    string `json:"commit,omitempty"`
	RemoteURL string `json:"remote_url,omitempty"`
}
