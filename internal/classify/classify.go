// Package classify assigns a heuristic type label with confidence to each
// project and derives a display name from its manifests.
package classify

import (
	"encoding/json"
	"math"
	"path"

	"golang.org/x/mod/modfile"

	"github.com/folioscan/folioscan/internal/types"
)

// categoryWeights maps languages to scored categories. The winning
// category becomes the project type; its share of the total score is the
// confidence.
var categoryWeights = map[string]map[string]int{
	"web_frontend": {
		"HTML": 2, "CSS": 2, "Vue": 3, "Svelte": 3,
		"JavaScript": 1, "TypeScript": 1,
	},
	"web_backend": {
		"Go": 2, "Python": 2, "Ruby": 2, "PHP": 3, "Java": 2,
		"C#": 2, "Rust": 2, "Elixir": 3, "SQL": 1,
	},
	"mobile": {
		"Swift": 3, "Kotlin": 3, "Dart": 3,
	},
	"systems": {
		"C": 3, "C++": 3, "Rust": 1,
	},
	"data": {
		"SQL": 2, "R": 3, "Python": 1,
	},
	"scripts": {
		"Shell": 3, "Perl": 2, "Lua": 2,
	},
}

// Classifier scores projects from their scanned files
type Classifier struct{}

// NewClassifier creates a classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// ClassifyFiles scores one project's files and returns its type label
// with confidence in [0,1].
func (c *Classifier) ClassifyFiles(files []types.ScanResult) types.Classification {
	codeFiles := 0
	contentFiles := 0
	scores := make(map[string]int)

	for _, result := range files {
		if result.Info().Skipped {
			continue
		}
		switch f := result.(type) {
		case *types.CodeFile:
			codeFiles++
			for category, weights := range categoryWeights {
				if w := weights[f.Language]; w > 0 {
					scores[category] += w
				}
			}
		case *types.ContentFile:
			contentFiles++
		}
	}

	if codeFiles == 0 {
		if contentFiles > 0 {
			return types.Classification{Type: "documentation", Confidence: 0.5}
		}
		return types.Classification{Type: "unknown", Confidence: 0}
	}

	total := 0
	bestCategory := ""
	bestScore := 0
	for category, score := range scores {
		total += score
		if score > bestScore || (score == bestScore && category < bestCategory) {
			bestCategory = category
			bestScore = score
		}
	}

	if bestCategory == "" {
		return types.Classification{Type: "software", Confidence: 0.3}
	}

	confidence := math.Round(float64(bestScore)/float64(total)*100) / 100
	return types.Classification{Type: bestCategory, Confidence: confidence}
}

// ProjectName derives a display name from the project's manifests: go.mod
// module path, then package.json name, then the root directory name.
func ProjectName(root string, provider types.Provider) string {
	if data, err := provider.ReadFile(path.Join(root, "go.mod")); err == nil {
		if module := modfile.ModulePath(data); module != "" {
			return path.Base(module)
		}
	}

	if data, err := provider.ReadFile(path.Join(root, "package.json")); err == nil {
		var pkg struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(data, &pkg) == nil && pkg.Name != "" {
			return pkg.Name
		}
	}

	if root == "." || root == "" {
		return ""
	}
	return path.Base(root)
}
