package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/straye-as/presales-api/internal/domain"
)

// Output token ceilings per step
const (
	MaxTokensAnalyzeScope     = 4000
	MaxTokensEstimateTeam     = 3000
	MaxTokensGenerateSchedule = 2000
)

const systemPrompt = `You are a senior presales engineer at a software consultancy.
You estimate software projects from client documents. Be realistic and conservative.
Always answer with a single JSON object that matches the requested structure exactly.
Do not add explanations outside the JSON.`

var funcs = template.FuncMap{
	"join": strings.Join,
}

var scopeTemplate = template.Must(template.New("scope").Funcs(funcs).Parse(`Analyze the attached project documents{{if .Names}} ({{join .Names ", "}}){{end}} and identify:
{{- if .Context}}

ADDITIONAL CONTEXT FROM THE SALES TEAM:
{{.Context}}
{{- end}}

1. Main project scope: the main goal in 2-3 sentences
2. Core functionalities: the 5-10 most important features
3. Integrations: external systems, APIs or services mentioned
4. Non-functional requirements: performance, security, scalability and similar
5. Complexity: "low", "medium" or "high", based on feature count, integrations, technical difficulty and novelty
6. Risks: potential challenges and uncertainties

Return ONLY a JSON object with this structure:
{
  "scope": "main project scope",
  "coreFunctionalities": ["feature 1", "feature 2"],
  "integrations": ["integration 1"],
  "nonFunctionalRequirements": ["requirement 1"],
  "complexity": "low | medium | high",
  "risks": ["risk 1"]
}`))

var teamTemplate = template.Must(template.New("team").Funcs(funcs).Parse(`Based on the following project analysis, propose the team required.

PROJECT ANALYSIS:
- Scope: {{.Analysis.Scope}}
- Complexity: {{.Analysis.Complexity}}
- Core functionalities ({{len .Analysis.CoreFunctionalities}}): {{join .Analysis.CoreFunctionalities "; "}}
- Integrations ({{len .Analysis.Integrations}}): {{join .Analysis.Integrations "; "}}
- Non-functional requirements: {{join .Analysis.NonFunctionalRequirements "; "}}
- Risks ({{len .Analysis.Risks}}): {{join .Analysis.Risks "; "}}

AVAILABLE PROFILES:
- Tech Lead (technical leadership, architecture)
- Backend Dev (APIs, databases)
- Frontend Dev (user interfaces)
- UX Designer (design, prototyping)
- Architect (solution architecture)
- Product Owner (product management)
- DevOps (infrastructure, CI/CD)
- QA (testing, quality)

ASSUMPTIONS:
- Agile delivery with two-week sprints
- 160 working hours per person per month
{{- if .Exemplars}}

{{.Exemplars}}
{{- end}}

Return ONLY a JSON object with this structure:
{
  "teamComposition": [{"role": "Tech Lead", "quantity": 1}, {"role": "Backend Dev", "quantity": 2}],
  "monthlyAllocation": [
    {"role": "Tech Lead", "hoursPerMonth": [160, 160, 80, 40, 40]},
    {"role": "Backend Dev", "hoursPerMonth": [320, 320, 320, 320, 160]}
  ],
  "projectDuration": 5,
  "phases": [
    {"name": "Discovery", "effortPercentage": 10},
    {"name": "Development", "effortPercentage": 60},
    {"name": "Testing", "effortPercentage": 20},
    {"name": "Deployment", "effortPercentage": 10}
  ]
}

RULES:
- every hoursPerMonth array has exactly projectDuration entries
- use 0 for months without allocation
- choose projectDuration freely based on complexity and scope`))

var scheduleTemplate = template.Must(template.New("schedule").Funcs(funcs).Parse(`Based on the following team estimation, create a detailed schedule.

PROJECT DURATION: {{.Team.ProjectDuration}} months
PHASES:
{{- range .Team.Phases}}
- {{.Name}}: {{.EffortPercentage}}%
{{- end}}

TEAM:
{{- range .Team.TeamComposition}}
- {{.Quantity}}x {{.Role}}
{{- end}}

Return ONLY a JSON object with this structure:
{
  "sprints": [
    {"number": 1, "deliverables": ["Initial setup", "Base architecture"]},
    {"number": 2, "deliverables": ["User API", "Login screen"]}
  ],
  "dependencies": [
    {"task": "Login screen", "dependsOn": ["User API"]}
  ],
  "milestones": [
    {"name": "MVP", "date": "Month 3"},
    {"name": "Production", "date": "Month {{.Team.ProjectDuration}}"}
  ],
  "riskBuffer": 10
}

RULES:
- sprints are two weeks long
- riskBuffer is the extra time percentage, between 5 and 20
- list the main project milestones`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// ScopePrompt renders the step 1 user prompt
func ScopePrompt(docs []Document, extraContext string) (string, error) {
	names := make([]string, 0, len(docs))
	for _, d := range docs {
		names = append(names, d.Name)
	}
	return render(scopeTemplate, struct {
		Names   []string
		Context string
	}{names, strings.TrimSpace(extraContext)})
}

// TeamPrompt renders the step 2 user prompt
func TeamPrompt(analysis domain.ProjectAnalysis, exemplars string) (string, error) {
	return render(teamTemplate, struct {
		Analysis  domain.ProjectAnalysis
		Exemplars string
	}{analysis, strings.TrimSpace(exemplars)})
}

// SchedulePrompt renders the step 3 user prompt
func SchedulePrompt(team domain.TeamEstimation) (string, error) {
	return render(scheduleTemplate, struct {
		Team domain.TeamEstimation
	}{team})
}
