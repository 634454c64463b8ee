package types

// Classification is a heuristic type label with confidence for a project
// or for the whole upload.
type Classification struct {
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
}

// ProjectPayload is the merged per-project block of the final payload
type ProjectPayload struct {
	ID             int                       `json:"id"` // project tag
	Root           string                    `json:"root"`
	Name           string                    `json:"name,omitempty"`
	Classification Classification            `json:"classification"`
	License        string                    `json:"license,omitempty"`
	Git            *GitInfo                  `json:"git,omitempty"`
	Files          map[FileType][]ScanResult `json:"files"`
	Contributors   []Contributor             `json:"contributors,omitempty"`
	Metrics        map[string]*ContributorMetrics `json:"contributor_metrics,omitempty"`
	Activity       []ActivityRecord          `json:"activity,omitempty"`
	Collaborative  bool                      `json:"collaborative"`
	CreatedAt      int64                     `json:"created_at,omitempty"` // first commit, unix
	GitError       string                    `json:"git_error,omitempty"`
}

// Totals counts files by type across the whole upload
type Totals struct {
	Code    int `json:"code"`
	Content int `json:"content"`
	Image   int `json:"image"`
	Unknown int `json:"unknown"`
	Skipped int `json:"skipped"`
	Dropped int `json:"dropped"` // removed by the human-file filter
}

// Overall is the upload-wide summary block
type Overall struct {
	Classification        string  `json:"classification"`
	Confidence            float64 `json:"confidence"`
	Totals                Totals  `json:"totals"`
	CollaborativeProjects int     `json:"collaborative_projects"`
	CollaborationRate     float64 `json:"collaboration_rate"`
}

// UserContributions is the cross-project summary for a filtered username
type UserContributions struct {
	Name         string  `json:"name"`
	Commits      int     `json:"commits"`
	LinesAdded   int     `json:"lines_added"`
	LinesDeleted int     `json:"lines_deleted"`
	Projects     []int   `json:"projects"` // tags the user contributed to
	AvgPercent   float64 `json:"avg_percent_of_commits"`
}

// Meta carries run metadata on the root payload
type Meta struct {
	UploadID   string `json:"upload_id"`
	Source     string `json:"source"`
	DurationMS int64  `json:"duration_ms"`
	Files      int    `json:"files"`
	Projects   int    `json:"projects"`
	Version    string `json:"version"`
}

// Payload is the root analysis result for one upload
type Payload struct {
	Source            string               `json:"source"` // always "zip_file"
	Meta              *Meta                `json:"meta,omitempty"`
	Projects          []*ProjectPayload    `json:"projects"`
	Overall           Overall              `json:"overall"`
	Skills            *SkillReport         `json:"skills,omitempty"`
	UserContributions *UserContributions   `json:"user_contributions,omitempty"`
}
