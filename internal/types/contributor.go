package types

// ActivityType classifies what a commit was doing
type ActivityType string

const (
	ActivityCode          ActivityType = "code"
	ActivityTest          ActivityType = "test"
	ActivityDocumentation ActivityType = "documentation"
	ActivityDesign        ActivityType = "design"
	ActivityConfiguration ActivityType = "configuration"
)

// Contributor is one canonical identity merged from all git author aliases
// determined to be the same person.
type Contributor struct {
	Name             string   `json:"name"`
	Emails           []string `json:"emails"`
	Commits          int      `json:"commits"`
	LinesAdded       int      `json:"lines_added"`
	LinesDeleted     int      `json:"lines_deleted"`
	PercentOfCommits float64  `json:"percent_of_commits"`
}

// ActivityRecord is the classified view of a single commit
type ActivityRecord struct {
	Hash         string       `json:"hash"`
	Author       string       `json:"author"`
	Email        string       `json:"email"`
	Date         string       `json:"date"` // YYYY-MM-DD
	Subject      string       `json:"subject"`
	LinesAdded   int          `json:"lines_added"`
	LinesDeleted int          `json:"lines_deleted"`
	Extensions   []string     `json:"extensions,omitempty"`
	Activity     ActivityType `json:"activity_type"`
}

// ActivityBreakdown aggregates one activity type for a contributor
type ActivityBreakdown struct {
	Commits      int `json:"commits"`
	LinesAdded   int `json:"lines_added"`
	LinesDeleted int `json:"lines_deleted"`
}

// LanguageShare is a language ranked by commit count
type LanguageShare struct {
	Language string `json:"language"`
	Commits  int    `json:"commits"`
}

// ContributorMetrics holds the full per-contributor aggregation for one
// project: activity breakdown, extension distribution, dates and duration.
type ContributorMetrics struct {
	Name           string                                 `json:"name"`
	Commits        int                                    `json:"commits"`
	LinesAdded     int                                    `json:"lines_added"`
	LinesDeleted   int                                    `json:"lines_deleted"`
	Activity       map[ActivityType]*ActivityBreakdown    `json:"activity"`
	Extensions     map[string]int                         `json:"extensions,omitempty"`
	FirstCommit    string                                 `json:"first_commit,omitempty"` // YYYY-MM-DD
	LastCommit     string                                 `json:"last_commit,omitempty"`
	DurationDays   int                                    `json:"duration_days"`
	DurationMonths float64                                `json:"duration_months"`
	TopLanguages   []LanguageShare                        `json:"top_languages,omitempty"`
}

// ProjectGitStats is the git analysis result for one discovered project.
// A failed or timed-out analysis carries only Error; the rest stays zero.
type ProjectGitStats struct {
	Tag             int                            `json:"tag"`
	TotalCommits    int                            `json:"total_commits"`
	Contributors    []Contributor                  `json:"contributors,omitempty"`
	Activity        []ActivityRecord               `json:"activity,omitempty"`
	Metrics         map[string]*ContributorMetrics `json:"metrics,omitempty"` // keyed by canonical name
	FirstCommitUnix int64                          `json:"first_commit_unix,omitempty"`
	Error           string                         `json:"error,omitempty"`
}
