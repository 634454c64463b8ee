package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateYAML_SkillRule(t *testing.T) {
	valid := []byte(`language: Python
default_skill: Python Development
patterns:
  - match: "import pandas"
    skill: Data Science
  - match: "(?i)select .+ from"
    regex: true
    skill: Databases
`)
	assert.NoError(t, ValidateYAML("skill-rule.json", valid))
}

func TestValidateYAML_SkillRuleMissingRequired(t *testing.T) {
	missing := []byte(`language: Python
patterns: []
`)
	err := ValidateYAML("skill-rule.json", missing)
	require.Error(t, err)

	var vErr ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.NotEmpty(t, vErr.Errors)
}

func TestValidateYAML_ScanConfig(t *testing.T) {
	valid := []byte(`scan:
  min_lines: 5
  excluded_dirs:
    - node_modules
`)
	assert.NoError(t, ValidateYAML("scan-config.json", valid))

	invalid := []byte(`scan:
  min_lines: -1
`)
	assert.Error(t, ValidateYAML("scan-config.json", invalid))
}

func TestValidateYAML_Unparseable(t *testing.T) {
	err := ValidateYAML("scan-config.json", []byte("scan: [unclosed"))
	assert.Error(t, err)
}

func TestValidateJSON_UnknownSchema(t *testing.T) {
	err := ValidateJSON("missing.json", map[string]interface{}{})
	assert.Error(t, err)
}
