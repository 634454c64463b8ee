package types

// File represents a file or directory entry returned by a Provider
type File struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"` // "file" or "dir"
	Size     int64  `json:"size"`
	Modified int64  `json:"modified"` // Unix timestamp
}

// Provider abstracts file system access for scanning
type Provider interface {
	// ListDir returns the contents of a directory
	ListDir(path string) ([]File, error)

	// ReadFile reads file content as bytes
	ReadFile(path string) ([]byte, error)

	// Exists checks if a file or directory exists
	Exists(path string) (bool, error)

	// IsDir checks if a path is a directory
	IsDir(path string) (bool, error)

	// GetBasePath returns the base path for this provider
	GetBasePath() string
}
