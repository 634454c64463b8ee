package types

// SkillSignal is a single skill observation from one file
type SkillSignal struct {
	Skill        string `json:"skill"`
	Language     string `json:"language"`
	LastUsedUnix *int64 `json:"last_used,omitempty"`
	LastUsedPath string `json:"last_used_path,omitempty"`
	ProjectTag   int    `json:"project_tag"`
}

// SkillAggregate summarizes one skill across all files in an upload
type SkillAggregate struct {
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
	Languages  []string `json:"languages"`
}

// ChronologicalSkill is one entry of the recency-ranked skill list
type ChronologicalSkill struct {
	Rank         int    `json:"rank"`
	Skill        string `json:"skill"`
	LastUsedUnix *int64 `json:"last_used,omitempty"`
	LastUsedPath string `json:"last_used_path,omitempty"`
	ProjectTag   int    `json:"project_tag"`
}

// SkillReport is the full skill analysis output for an upload
type SkillReport struct {
	Skills        map[string]*SkillAggregate `json:"skills"`
	Chronological []ChronologicalSkill       `json:"chronological"`
}
