package ai

import (
	"errors"
	"testing"

	"github.com/straye-as/presales-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const analysisJSON = `{
  "scope": "Customer portal with {braces} in text",
  "coreFunctionalities": ["login", "orders"],
  "integrations": ["SAP"],
  "nonFunctionalRequirements": ["99.9% uptime"],
  "complexity": "medium",
  "risks": ["legacy \"ERP\" API"]
}`

const teamJSON = `{
  "teamComposition": [{"role": "Backend Dev", "quantity": 2}, {"role": "QA", "quantity": 1}],
  "monthlyAllocation": [
    {"role": "Backend Dev", "hoursPerMonth": [320, 320, 160]},
    {"role": "QA", "hoursPerMonth": [0, 80, 160, 0, 0]}
  ],
  "projectDuration": 3,
  "phases": [{"name": "Build", "effortPercentage": 80}, {"name": "Test", "effortPercentage": 20}]
}`

const scheduleJSON = `{
  "sprints": [{"number": 1, "deliverables": ["setup"]}],
  "dependencies": [],
  "milestones": [{"name": "MVP", "date": "Month 2"}],
  "riskBuffer": 10
}`

func TestExtractJSON_ToleratesProse(t *testing.T) {
	text := "Sure! Here's the analysis you asked for: \"quoted\" {not json} and then\n```json\n" + analysisJSON + "\n```\nLet me know."

	raw, ok := ExtractJSON(text)
	require.True(t, ok)
	assert.Contains(t, raw, `"scope"`)

	analysis, err := DecodeAnalysis(text)
	require.NoError(t, err)
	assert.Equal(t, domain.ComplexityMedium, analysis.Complexity)
	assert.Equal(t, "Customer portal with {braces} in text", analysis.Scope)
	assert.Equal(t, []string{`legacy "ERP" API`}, analysis.Risks)
}

func TestExtractJSON_StrayBraceBeforeObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "unclosed brace in prose", text: `Sure { here you go: {"scope":"x"}`, want: `{"scope":"x"}`},
		{name: "placeholder", text: "Budget is {TBD, details follow:\n" + `{"scope":"y"} thanks`, want: `{"scope":"y"}`},
		{name: "unbalanced quote after brace", text: `Note {it's "rough: {"scope":"z"}`, want: `{"scope":"z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := ExtractJSON(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, raw)
		})
	}
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, ok := ExtractJSON("I cannot help with that.")
	assert.False(t, ok)

	_, err := DecodeAnalysis("I cannot help with that.")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidProviderResponse))

	var invalidErr *InvalidResponseError
	require.True(t, errors.As(err, &invalidErr))
	assert.Equal(t, domain.StepAnalyzeScope, invalidErr.Step)
}

func TestDecodeAnalysis_MissingKeys(t *testing.T) {
	_, err := DecodeAnalysis(`{"scope": "x", "complexity": "low"}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coreFunctionalities")
}

func TestDecodeAnalysis_InvalidComplexity(t *testing.T) {
	_, err := DecodeAnalysis(`{"scope": "x", "coreFunctionalities": [], "integrations": [], "nonFunctionalRequirements": [], "complexity": "extreme", "risks": []}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestDecodeTeam_TrimsTrailingZeroMonths(t *testing.T) {
	team, err := DecodeTeam(teamJSON)
	require.NoError(t, err)

	assert.Equal(t, 3, team.ProjectDuration)
	assert.Equal(t, []float64{0, 80, 160}, team.MonthlyAllocation[1].HoursPerMonth)
	assert.Equal(t, 3, team.TeamSize())
	assert.Equal(t, 1040.0, team.TotalHours())
}

func TestDecodeTeam_RejectsHoursBeyondDuration(t *testing.T) {
	_, err := DecodeTeam(`{"teamComposition": [{"role": "QA", "quantity": 1}],
		"monthlyAllocation": [{"role": "QA", "hoursPerMonth": [10, 10, 10]}],
		"projectDuration": 2, "phases": []}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidProviderResponse))
}

func TestDecodeTeam_RejectsShortAllocation(t *testing.T) {
	_, err := DecodeTeam(`{"teamComposition": [{"role": "QA", "quantity": 1}],
		"monthlyAllocation": [{"role": "QA", "hoursPerMonth": [10]}],
		"projectDuration": 2, "phases": []}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "projectDuration is 2")
}

func TestDecodeTeam_RejectsNegativeHours(t *testing.T) {
	_, err := DecodeTeam(`{"teamComposition": [{"role": "QA", "quantity": 1}],
		"monthlyAllocation": [{"role": "QA", "hoursPerMonth": [10, -5]}],
		"projectDuration": 2, "phases": []}`)
	assert.Error(t, err)
}

func TestDecodeSchedule(t *testing.T) {
	schedule, err := DecodeSchedule("schedule:\n" + scheduleJSON)
	require.NoError(t, err)
	assert.Equal(t, 10.0, schedule.RiskBuffer)
	assert.Len(t, schedule.Sprints, 1)

	_, err = DecodeSchedule(`{"sprints": [], "dependencies": [], "milestones": [], "riskBuffer": 150}`)
	assert.Error(t, err)
}
