package transform

import (
	"math"
	"sort"
	"strings"

	"github.com/folioscan/folioscan/internal/classify"
	"github.com/folioscan/folioscan/internal/types"
)

// Input carries everything the earlier pipeline stages produced for one
// upload. GitStats, Names and Licenses are keyed by project tag and may
// be sparse.
type Input struct {
	Projects       []types.DiscoveredProject
	Files          []types.ScanResult // post-filter, post-dedup
	Dropped        []types.ScanResult
	GitStats       map[int]*types.ProjectGitStats
	Names          map[int]string
	Licenses       map[int]string
	FilterUsername string
}

// Transformer merges per-stage results into the final nested payload
type Transformer struct {
	classifier *classify.Classifier
}

func NewTransformer() *Transformer {
	return &Transformer{classifier: classify.NewClassifier()}
}

// Build assembles the per-project payload blocks, the upload-wide overall
// summary, and the optional filtered-user summary.
func (t *Transformer) Build(in Input) ([]*types.ProjectPayload, types.Overall, *types.UserContributions) {
	byTag := groupByTag(in.Files)

	projects := make([]*types.ProjectPayload, 0, len(in.Projects)+1)
	for _, proj := range in.Projects {
		projects = append(projects, t.buildProject(proj, byTag[proj.Tag], in))
	}

	// Files outside every discovered root get their own block, but only
	// when at least one such file exists.
	if unorganized, ok := byTag[types.UnorganizedTag]; ok && len(unorganized) > 0 {
		block := t.buildProject(types.DiscoveredProject{
			Root: "",
			Tag:  types.UnorganizedTag,
		}, unorganized, in)
		block.Name = "unorganized"
		projects = append(projects, block)
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })

	overall := t.buildOverall(projects, in)

	var user *types.UserContributions
	if in.FilterUsername != "" {
		user = filterContributors(projects, in.FilterUsername)
	}

	return projects, overall, user
}

func (t *Transformer) buildProject(proj types.DiscoveredProject, files []types.ScanResult, in Input) *types.ProjectPayload {
	payload := &types.ProjectPayload{
		ID:             proj.Tag,
		Root:           proj.Root,
		Name:           in.Names[proj.Tag],
		Classification: t.classifier.ClassifyFiles(files),
		License:        in.Licenses[proj.Tag],
		Files:          groupByType(files),
	}
	if proj.HasGit {
		payload.Git = &types.GitInfo{
			Branch:    proj.Branch,
			Commit:    proj.HeadCommit,
			RemoteURL: proj.RemoteURL,
		}
	}

	stats := in.GitStats[proj.Tag]
	if stats == nil {
		return payload
	}

	payload.Contributors = stats.Contributors
	payload.Metrics = stats.Metrics
	payload.Activity = stats.Activity
	payload.Collaborative = isCollaborative(stats.Contributors)
	payload.CreatedAt = stats.FirstCommitUnix
	payload.GitError = stats.Error
	return payload
}

func (t *Transformer) buildOverall(projects []*types.ProjectPayload, in Input) types.Overall {
	overall := types.Overall{
		Totals: countTotals(in.Files, in.Dropped),
	}

	whole := t.classifier.ClassifyFiles(in.Files)
	overall.Classification = whole.Type
	overall.Confidence = whole.Confidence

	organized := 0
	for _, proj := range projects {
		if proj.ID == types.UnorganizedTag {
			continue
		}
		organized++
		if proj.Collaborative {
			overall.CollaborativeProjects++
		}
	}
	if organized > 0 {
		overall.CollaborationRate = round2(float64(overall.CollaborativeProjects) / float64(organized))
	}
	return overall
}

// isCollaborative reports whether at least two contributors landed commits
func isCollaborative(contributors []types.Contributor) bool {
	active := 0
	for _, c := range contributors {
		if c.Commits > 0 {
			active++
		}
	}
	return active >= 2
}

func groupByTag(files []types.ScanResult) map[int][]types.ScanResult {
	byTag := make(map[int][]types.ScanResult)
	for _, f := range files {
		byTag[f.ProjectTag()] = append(byTag[f.ProjectTag()], f)
	}
	return byTag
}

func groupByType(files []types.ScanResult) map[types.FileType][]types.ScanResult {
	byType := make(map[types.FileType][]types.ScanResult)
	for _, f := range files {
		byType[f.Type()] = append(byType[f.Type()], f)
	}
	return byType
}

func countTotals(files, dropped []types.ScanResult) types.Totals {
	totals := types.Totals{Dropped: len(dropped)}
	for _, f := range files {
		if f.Info().Skipped {
			totals.Skipped++
			continue
		}
		switch f.Type() {
		case types.FileTypeCode:
			totals.Code++
		case types.FileTypeContent:
			totals.Content++
		case types.FileTypeImage:
			totals.Image++
		default:
			totals.Unknown++
		}
	}
	return totals
}

// filterContributors trims each project's contributor list down to the
// identities matching the requested username and sums the survivors into a
// cross-project view. Returns nil when nothing matched.
func filterContributors(projects []*types.ProjectPayload, username string) *types.UserContributions {
	want := strings.ToLower(strings.TrimSpace(username))
	if want == "" {
		return nil
	}

	summary := &types.UserContributions{}
	var percents []float64

	for _, proj := range projects {
		var matched []types.Contributor
		for _, c := range proj.Contributors {
			if matchesUsername(c, want) {
				matched = append(matched, c)
			}
		}
		proj.Contributors = matched
		if len(matched) == 0 {
			continue
		}
		for _, c := range matched {
			if summary.Name == "" {
				summary.Name = c.Name
			}
			summary.Commits += c.Commits
			summary.LinesAdded += c.LinesAdded
			summary.LinesDeleted += c.LinesDeleted
			percents = append(percents, c.PercentOfCommits)
		}
		summary.Projects = append(summary.Projects, proj.ID)
	}

	if summary.Name == "" {
		return nil
	}
	sort.Ints(summary.Projects)
	var sum float64
	for _, p := range percents {
		sum += p
	}
	summary.AvgPercent = round2(sum / float64(len(percents)))
	return summary
}

// matchesUsername checks the canonical name, any email local part, and the
// first name token, all case-insensitively.
func matchesUsername(c types.Contributor, want string) bool {
	name := strings.ToLower(c.Name)
	if name == want {
		return true
	}
	if first, _, ok := strings.Cut(name, " "); ok && first == want {
		return true
	}
	for _, email := range c.Emails {
		local := strings.ToLower(email)
		if at := strings.IndexByte(local, '@'); at >= 0 {
			local = local[:at]
		}
		if local == want {
			return true
		}
	}
	return false
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
