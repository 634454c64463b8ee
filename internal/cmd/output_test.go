package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/folioscan/folioscan/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func samplePayload() *types.Payload {
	lastUsed := int64(1_700_000_000)
	return &types.Payload{
		Source: "zip_file",
		Meta: &types.Meta{
			UploadID:   "u-123",
			Source:     "portfolio.zip",
			DurationMS: 840,
			Files:      12,
			Projects:   2,
			Version:    "1.0.0",
		},
		Projects: []*types.ProjectPayload{
			{
				ID:             1,
				Root:           "api",
				Name:           "billing",
				Classification: types.Classification{Type: "web_backend", Confidence: 0.8},
				License:        "MIT",
				Files:          map[types.FileType][]types.ScanResult{},
				Contributors: []types.Contributor{
					{Name: "Ana Lima", Commits: 6, LinesAdded: 120, LinesDeleted: 30, PercentOfCommits: 60},
				},
				Collaborative: true,
			},
			{
				ID:             2,
				Root:           "web",
				Classification: types.Classification{Type: "web_frontend", Confidence: 0.7},
				Files:          map[types.FileType][]types.ScanResult{},
				GitError:       "git shortlog timed out after 8s",
			},
		},
		Overall: types.Overall{
			Classification:        "web_backend",
			Confidence:            0.75,
			Totals:                types.Totals{Code: 8, Content: 3, Unknown: 1, Dropped: 2},
			CollaborativeProjects: 1,
			CollaborationRate:     0.5,
		},
		Skills: &types.SkillReport{
			Skills: map[string]*types.SkillAggregate{
				"Web Backend": {Count: 5, Percentage: 62.5, Languages: []string{"Go"}},
			},
			Chronological: []types.ChronologicalSkill{
				{Rank: 1, Skill: "Web Backend", LastUsedUnix: &lastUsed, ProjectTag: 1},
			},
		},
	}
}

func TestOutputToFile_JSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.json")

	err := OutputToFile(payloadOutput{samplePayload()}, "json", out, true)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(data, []byte("\n")))

	var decoded types.Payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "zip_file", decoded.Source)
	assert.Equal(t, "u-123", decoded.Meta.UploadID)
	assert.Equal(t, 8, decoded.Overall.Totals.Code)
}

func TestOutputToFile_YAML(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.yaml")

	err := OutputToFile(payloadOutput{samplePayload()}, "YAML", out, false)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "zip_file", decoded["source"])
}

func TestOutputToFile_Text(t *testing.T) {
	out := filepath.Join(t.TempDir(), "result.txt")

	err := OutputToFile(payloadOutput{samplePayload()}, "text", out, false)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "Upload u-123 (portfolio.zip)")
	assert.Contains(t, text, "12 files, 2 projects, analyzed in 840ms")
	assert.Contains(t, text, "Overall: web_backend (75%)")
	assert.Contains(t, text, "code 8, content 3, image 0, unknown 1, skipped 0, dropped 2")
	assert.Contains(t, text, "1 collaborative projects (rate 0.50)")
	assert.Contains(t, text, "Project 1: billing [web_backend 80%]")
	assert.Contains(t, text, "license: MIT")
	assert.Contains(t, text, "Ana Lima: 6 commits (60.0%), +120/-30")
	// projects without a name fall back to the root path
	assert.Contains(t, text, "Project 2: web [web_frontend 70%]")
	assert.Contains(t, text, "git error: git shortlog timed out after 8s")
	assert.Contains(t, text, "Skills (most recent first):")
	assert.Contains(t, text, "1. Web Backend (5 files, 62.5%) last used 2023-11-14")
}

func TestPayloadOutput_TextUserContributions(t *testing.T) {
	payload := samplePayload()
	payload.UserContributions = &types.UserContributions{
		Name:       "Ana Lima",
		Commits:    6,
		LinesAdded: 120,
		Projects:   []int{1},
		AvgPercent: 60,
	}

	var buf bytes.Buffer
	payloadOutput{payload}.ToText(&buf)

	assert.Contains(t, buf.String(),
		"Contributions by Ana Lima: 6 commits, +120/-0 across 1 projects (avg 60.0%)")
}
