package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/folioscan/folioscan/internal/types"
	"github.com/folioscan/folioscan/internal/util"
	"gopkg.in/yaml.v3"
)

// Outputter interface for commands with structured output
type Outputter interface {
	// ToJSON returns the data structure for JSON/YAML marshaling
	ToJSON() interface{}
	// ToText writes human-readable text format
	ToText(w io.Writer)
}

// OutputToFile renders an Outputter in the requested format, to a file when
// outputFile is set and to stdout otherwise.
func OutputToFile(o Outputter, format, outputFile string, pretty bool) error {
	var data []byte
	var err error

	switch util.NormalizeFormat(format) {
	case "json":
		if pretty {
			data, err = json.MarshalIndent(o.ToJSON(), "", "  ")
		} else {
			data, err = json.Marshal(o.ToJSON())
		}
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		data = append(data, '\n')
	case "yaml":
		data, err = yaml.Marshal(o.ToJSON())
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
	default: // text
		if outputFile == "" {
			o.ToText(os.Stdout)
			return nil
		}
		var buf bytes.Buffer
		o.ToText(&buf)
		data = buf.Bytes()
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Results written to %s\n", outputFile)
		return nil
	}
	_, err = os.Stdout.Write(data)
	return err
}

// payloadOutput adapts the analysis payload to the Outputter interface
type payloadOutput struct {
	payload *types.Payload
}

func (p payloadOutput) ToJSON() interface{} { return p.payload }

func (p payloadOutput) ToText(w io.Writer) {
	pl := p.payload
	if pl.Meta != nil {
		fmt.Fprintf(w, "Upload %s (%s)\n", pl.Meta.UploadID, pl.Meta.Source)
		fmt.Fprintf(w, "  %d files, %d projects, analyzed in %dms\n\n",
			pl.Meta.Files, pl.Meta.Projects, pl.Meta.DurationMS)
	}

	fmt.Fprintf(w, "Overall: %s (%.0f%%)\n", pl.Overall.Classification, pl.Overall.Confidence*100)
	t := pl.Overall.Totals
	fmt.Fprintf(w, "  code %d, content %d, image %d, unknown %d, skipped %d, dropped %d\n",
		t.Code, t.Content, t.Image, t.Unknown, t.Skipped, t.Dropped)
	if pl.Overall.CollaborativeProjects > 0 {
		fmt.Fprintf(w, "  %d collaborative projects (rate %.2f)\n",
			pl.Overall.CollaborativeProjects, pl.Overall.CollaborationRate)
	}
	fmt.Fprintln(w)

	for _, proj := range pl.Projects {
		name := proj.Name
		if name == "" {
			name = proj.Root
		}
		fmt.Fprintf(w, "Project %d: %s [%s %.0f%%]\n",
			proj.ID, name, proj.Classification.Type, proj.Classification.Confidence*100)
		if proj.License != "" {
			fmt.Fprintf(w, "  license: %s\n", proj.License)
		}
		if proj.Git != nil {
			fmt.Fprintf(w, "  git: %s @ %s\n", proj.Git.Branch, proj.Git.Commit)
		}
		if proj.GitError != "" {
			fmt.Fprintf(w, "  git error: %s\n", proj.GitError)
		}
		for _, c := range proj.Contributors {
			fmt.Fprintf(w, "  %s: %d commits (%.1f%%), +%d/-%d\n",
				c.Name, c.Commits, c.PercentOfCommits, c.LinesAdded, c.LinesDeleted)
		}
		fmt.Fprintln(w)
	}

	if pl.Skills != nil && len(pl.Skills.Chronological) > 0 {
		fmt.Fprintln(w, "Skills (most recent first):")
		for _, s := range pl.Skills.Chronological {
			line := fmt.Sprintf("  %2d. %s", s.Rank, s.Skill)
			if agg := pl.Skills.Skills[s.Skill]; agg != nil {
				line += fmt.Sprintf(" (%d files, %.1f%%)", agg.Count, agg.Percentage)
			}
			if s.LastUsedUnix != nil {
				line += " last used " + time.Unix(*s.LastUsedUnix, 0).UTC().Format("2006-01-02")
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintln(w)
	}

	if pl.UserContributions != nil {
		u := pl.UserContributions
		projects := append([]int(nil), u.Projects...)
		sort.Ints(projects)
		fmt.Fprintf(w, "Contributions by %s: %d commits, +%d/-%d across %d projects (avg %.1f%%)\n",
			u.Name, u.Commits, u.LinesAdded, u.LinesDeleted, len(projects), u.AvgPercent)
	}
}
