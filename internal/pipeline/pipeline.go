package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"log/slog"

	"github.com/folioscan/folioscan/internal/archive"
	"github.com/folioscan/folioscan/internal/classify"
	"github.com/folioscan/folioscan/internal/config"
	"github.com/folioscan/folioscan/internal/dedup"
	"github.com/folioscan/folioscan/internal/discovery"
	"github.com/folioscan/folioscan/internal/gitstats"
	"github.com/folioscan/folioscan/internal/license"
	"github.com/folioscan/folioscan/internal/progress"
	"github.com/folioscan/folioscan/internal/provider"
	"github.com/folioscan/folioscan/internal/scanner"
	"github.com/folioscan/folioscan/internal/skills"
	"github.com/folioscan/folioscan/internal/transform"
	"github.com/folioscan/folioscan/internal/types"
)

// Pipeline wires the analysis stages together: extract, discover, scan,
// filter, git analysis, skills, dedup and the final merge.
type Pipeline struct {
	settings *config.Settings
	cfg      *config.ScanConfig
	store    dedup.Store
	runner   gitstats.Runner
	progress *progress.Progress
	version  string
}

type Option func(*Pipeline)

// WithStore overrides the dedup store (in-memory by default)
func WithStore(store dedup.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithRunner overrides the git runner, used by tests
func WithRunner(runner gitstats.Runner) Option {
	return func(p *Pipeline) { p.runner = runner }
}

// WithProgress attaches a progress reporter
func WithProgress(prog *progress.Progress) Option {
	return func(p *Pipeline) { p.progress = prog }
}

// WithVersion sets the version string stamped into the payload meta
func WithVersion(version string) Option {
	return func(p *Pipeline) { p.version = version }
}

func New(settings *config.Settings, cfg *config.ScanConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		settings: settings,
		cfg:      cfg,
		store:    dedup.NewMemoryStore(),
		runner:   gitstats.NewExecRunner(),
		progress: progress.New(false, nil),
		version:  "dev",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze runs the full pipeline over one uploaded archive. The source
// string names the upload (typically the original filename) and is carried
// into the payload meta.
func (p *Pipeline) Analyze(ctx context.Context, data []byte, source string) (*types.Payload, error) {
	start := time.Now()
	p.progress.AnalyzeStart(source, p.settings.ExcludePatterns)

	upload, err := archive.Extract(data)
	if err != nil {
		return nil, err
	}
	defer upload.Close()
	p.progress.ArchiveExtracted(len(upload.Timestamps), upload.Dir)

	prov := provider.NewFSProvider(upload.TreePath)

	projects, err := discovery.NewDiscoverer(prov, p.cfg).Discover()
	if err != nil {
		return nil, fmt.Errorf("project discovery failed: %w", err)
	}
	tags := discovery.NewTagIndex(projects)
	p.progress.ProjectsDiscovered(len(projects))

	scanStart := time.Now()
	sc := scanner.NewScanner(prov, p.cfg, tags,
		scanner.WithRawReader(upload),
		scanner.WithExcludePatterns(p.settings.ExcludePatterns),
		scanner.WithWorkers(p.settings.HashWorkers),
	)
	results, err := sc.Scan()
	if err != nil {
		return nil, fmt.Errorf("file scan failed: %w", err)
	}
	p.progress.FilesScanned(len(results), time.Since(scanStart))

	kept, dropped := scanner.NewHumanFilter(prov).Filter(results)

	stats := p.analyzeGit(ctx, upload.TreePath, projects)
	projectTimes := make(map[int]int64, len(stats))
	for tag, s := range stats {
		if s.FirstCommitUnix > 0 {
			projectTimes[tag] = s.FirstCommitUnix
		}
	}

	skillAnalyzer, err := skills.NewAnalyzer(p.cfg, tags)
	if err != nil {
		return nil, fmt.Errorf("skill rules failed to load: %w", err)
	}
	skillReport := skillAnalyzer.Analyze(kept, prov, upload.Timestamps, projectTimes)

	dd := dedup.NewDeduplicator(p.store, p.settings.UserID, upload.ID)
	if err := dd.Apply(ctx, kept); err != nil {
		return nil, fmt.Errorf("deduplication failed: %w", err)
	}
	p.progress.DuplicatesMarked(countDuplicates(kept))

	names := make(map[int]string, len(projects))
	licenses := make(map[int]string, len(projects))
	detector := license.NewDetector()
	for _, proj := range projects {
		names[proj.Tag] = classify.ProjectName(proj.Root, prov)
		dir := filepath.Join(upload.TreePath, filepath.FromSlash(proj.Root))
		if id := detector.DetectInDirectory(dir); id != "" {
			licenses[proj.Tag] = id
		}
	}

	blocks, overall, user := transform.NewTransformer().Build(transform.Input{
		Projects:       projects,
		Files:          kept,
		Dropped:        dropped,
		GitStats:       stats,
		Names:          names,
		Licenses:       licenses,
		FilterUsername: p.settings.FilterUsername,
	})

	duration := time.Since(start)
	payload := &types.Payload{
		Source: "zip_file",
		Meta: &types.Meta{
			UploadID:   upload.ID,
			Source:     source,
			DurationMS: duration.Milliseconds(),
			Files:      len(results),
			Projects:   len(blocks),
			Version:    p.version,
		},
		Projects:          blocks,
		Overall:           overall,
		Skills:            skillReport,
		UserContributions: user,
	}

	p.progress.AnalyzeComplete(len(results), len(blocks), duration)
	slog.Info("Analysis complete",
		"upload_id", upload.ID,
		"files", len(results),
		"projects", len(blocks),
		"duration", duration)
	return payload, nil
}

// analyzeGit runs the git analyzer for every .git-backed project on a
// bounded worker pool. Results are keyed by project tag.
func (p *Pipeline) analyzeGit(ctx context.Context, treePath string, projects []types.DiscoveredProject) map[int]*types.ProjectGitStats {
	var targets []types.DiscoveredProject
	for _, proj := range projects {
		if proj.HasGit {
			targets = append(targets, proj)
		}
	}
	stats := make(map[int]*types.ProjectGitStats, len(targets))
	if len(targets) == 0 {
		return stats
	}

	workers := p.settings.GitWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(targets) {
		workers = len(targets)
	}

	analyzer := gitstats.NewAnalyzer(p.runner, p.cfg)
	jobs := make(chan types.DiscoveredProject)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for proj := range jobs {
				dir := filepath.Join(treePath, filepath.FromSlash(proj.Root))
				result := analyzer.Analyze(ctx, dir, proj.Tag)
				mu.Lock()
				stats[proj.Tag] = result
				mu.Unlock()
				p.progress.ProjectAnalyzed(proj.Tag, proj.Root, result.TotalCommits)
			}
		}()
	}
	for _, proj := range targets {
		jobs <- proj
	}
	close(jobs)
	wg.Wait()
	return stats
}

func countDuplicates(results []types.ScanResult) int {
	count := 0
	for _, r := range results {
		if r.Info().IsDuplicate {
			count++
		}
	}
	return count
}
