// Package skills classifies code file content into skill categories and
// ranks detected skills by recency of use.
package skills

import (
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/folioscan/folioscan/internal/validation"
)

//go:embed rules
var rulesFS embed.FS

// Rule is the on-disk shape of a per-language skill rule file
type Rule struct {
	Language     string    `yaml:"language"`
	DefaultSkill string    `yaml:"default_skill"`
	Patterns     []Pattern `yaml:"patterns"`
}

// Pattern maps a content match to a skill name
type Pattern struct {
	Match string `yaml:"match"`
	Regex bool   `yaml:"regex"`
	Skill string `yaml:"skill"`
}

// compiledRule is a rule ready for matching
type compiledRule struct {
	language     string
	defaultSkill string
	patterns     []compiledPattern
}

type compiledPattern struct {
	substring string         // used when re is nil
	re        *regexp.Regexp // used for regex patterns
	skill     string
}

func (r *compiledRule) match(content string) []string {
	seen := make(map[string]bool)
	var skills []string
	for _, pattern := range r.patterns {
		matched := false
		if pattern.re != nil {
			matched = pattern.re.MatchString(content)
		} else {
			matched = strings.Contains(content, pattern.substring)
		}
		if matched && !seen[pattern.skill] {
			seen[pattern.skill] = true
			skills = append(skills, pattern.skill)
		}
	}
	if len(skills) == 0 {
		skills = append(skills, r.defaultSkill)
	}
	return skills
}

// loadEmbeddedRules loads and compiles all rule files, validating each
// against the skill-rule schema first.
func loadEmbeddedRules() (map[string]*compiledRule, error) {
	rules := make(map[string]*compiledRule)

	err := fs.WalkDir(rulesFS, "rules", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || (!strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml")) {
			return nil
		}

		content, err := rulesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read rule file %s: %w", path, err)
		}

		if err := validation.ValidateYAML("skill-rule.json", content); err != nil {
			return fmt.Errorf("invalid rule in %s: %w", path, err)
		}

		var rule Rule
		if err := yaml.Unmarshal(content, &rule); err != nil {
			return fmt.Errorf("failed to parse rule file %s: %w", path, err)
		}

		compiled, err := compileRule(rule)
		if err != nil {
			return fmt.Errorf("invalid rule in %s: %w", path, err)
		}
		rules[rule.Language] = compiled

		return nil
	})
	if err != nil {
		return nil, err
	}

	return rules, nil
}

func compileRule(rule Rule) (*compiledRule, error) {
	compiled := &compiledRule{
		language:     rule.Language,
		defaultSkill: rule.DefaultSkill,
	}
	for _, pattern := range rule.Patterns {
		cp := compiledPattern{skill: pattern.Skill}
		if pattern.Regex {
			re, err := regexp.Compile(pattern.Match)
			if err != nil {
				return nil, fmt.Errorf("bad pattern %q: %w", pattern.Match, err)
			}
			cp.re = re
		} else {
			cp.substring = pattern.Match
		}
		compiled.patterns = append(compiled.patterns, cp)
	}
	return compiled, nil
}
