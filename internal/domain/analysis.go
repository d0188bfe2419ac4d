package domain

// Complexity is the project complexity assigned during scope analysis
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// IsValid checks if the complexity is a known value
func (c Complexity) IsValid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

// ProjectAnalysis is the output of the scope analysis step
type ProjectAnalysis struct {
	Scope                     string     `json:"scope" validate:"required"`
	CoreFunctionalities       []string   `json:"coreFunctionalities" validate:"required"`
	Integrations              []string   `json:"integrations" validate:"required"`
	NonFunctionalRequirements []string   `json:"nonFunctionalRequirements" validate:"required"`
	Complexity                Complexity `json:"complexity" validate:"required,oneof=low medium high"`
	Risks                     []string   `json:"risks" validate:"required"`
}

// TeamMember is one line of the suggested team composition
type TeamMember struct {
	Role     string `json:"role" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// RoleAllocation is the monthly hour plan for one role
type RoleAllocation struct {
	Role          string    `json:"role" validate:"required"`
	HoursPerMonth []float64 `json:"hoursPerMonth" validate:"required,dive,gte=0"`
}

// Phase is a named share of the project effort
type Phase struct {
	Name             string  `json:"name" validate:"required"`
	EffortPercentage float64 `json:"effortPercentage" validate:"gte=0"`
}

// TeamEstimation is the output of the team estimation step
type TeamEstimation struct {
	TeamComposition   []TeamMember     `json:"teamComposition" validate:"required,dive"`
	MonthlyAllocation []RoleAllocation `json:"monthlyAllocation" validate:"required,dive"`
	ProjectDuration   int              `json:"projectDuration" validate:"required,gt=0"`
	Phases            []Phase          `json:"phases" validate:"required,dive"`
}

// TeamSize is the sum of quantities across the team composition
func (t *TeamEstimation) TeamSize() int {
	total := 0
	for _, m := range t.TeamComposition {
		total += m.Quantity
	}
	return total
}

// TotalHours is the sum of every allocated hour
func (t *TeamEstimation) TotalHours() float64 {
	total := 0.0
	for _, a := range t.MonthlyAllocation {
		for _, h := range a.HoursPerMonth {
			total += h
		}
	}
	return total
}

// Sprint groups deliverables under a sprint number
type Sprint struct {
	Number       int      `json:"number" validate:"gt=0"`
	Deliverables []string `json:"deliverables" validate:"required"`
}

// Dependency links a task to the tasks it waits on
type Dependency struct {
	Task      string   `json:"task" validate:"required"`
	DependsOn []string `json:"dependsOn"`
}

// Milestone is a named checkpoint with a free-form date label
type Milestone struct {
	Name string `json:"name" validate:"required"`
	Date string `json:"date"`
}

// Schedule is the output of the schedule step
type Schedule struct {
	Sprints      []Sprint     `json:"sprints" validate:"required,dive"`
	Dependencies []Dependency `json:"dependencies" validate:"dive"`
	Milestones   []Milestone  `json:"milestones" validate:"dive"`
	RiskBuffer   float64      `json:"riskBuffer" validate:"gte=0,lte=100"`
}

// CompleteAnalysis is the full three-step result plus provenance
type CompleteAnalysis struct {
	Analysis       ProjectAnalysis `json:"analysis"`
	TeamEstimation TeamEstimation  `json:"teamEstimation"`
	Schedule       Schedule        `json:"schedule"`
	Provider       string          `json:"provider"`
	Model          string          `json:"model"`
}

// Clone returns a deep copy so the original analysis can never be aliased by edits
func (c *CompleteAnalysis) Clone() *CompleteAnalysis {
	if c == nil {
		return nil
	}
	out := *c
	out.Analysis.CoreFunctionalities = cloneStrings(c.Analysis.CoreFunctionalities)
	out.Analysis.Integrations = cloneStrings(c.Analysis.Integrations)
	out.Analysis.NonFunctionalRequirements = cloneStrings(c.Analysis.NonFunctionalRequirements)
	out.Analysis.Risks = cloneStrings(c.Analysis.Risks)

	out.TeamEstimation.TeamComposition = append([]TeamMember(nil), c.TeamEstimation.TeamComposition...)
	out.TeamEstimation.Phases = append([]Phase(nil), c.TeamEstimation.Phases...)
	out.TeamEstimation.MonthlyAllocation = make([]RoleAllocation, len(c.TeamEstimation.MonthlyAllocation))
	for i, a := range c.TeamEstimation.MonthlyAllocation {
		out.TeamEstimation.MonthlyAllocation[i] = RoleAllocation{
			Role:          a.Role,
			HoursPerMonth: append([]float64(nil), a.HoursPerMonth...),
		}
	}

	out.Schedule.Sprints = make([]Sprint, len(c.Schedule.Sprints))
	for i, s := range c.Schedule.Sprints {
		out.Schedule.Sprints[i] = Sprint{Number: s.Number, Deliverables: cloneStrings(s.Deliverables)}
	}
	out.Schedule.Dependencies = make([]Dependency, len(c.Schedule.Dependencies))
	for i, d := range c.Schedule.Dependencies {
		out.Schedule.Dependencies[i] = Dependency{Task: d.Task, DependsOn: cloneStrings(d.DependsOn)}
	}
	out.Schedule.Milestones = append([]Milestone(nil), c.Schedule.Milestones...)
	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}
