package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/straye-as/presales-api/internal/domain"
)

var validate = validator.New()

// InvalidResponseError is a model answer that could not be turned into the step's schema
type InvalidResponseError struct {
	Step   string
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid %s response: %s", e.Step, e.Reason)
}

func (e *InvalidResponseError) Unwrap() error {
	return domain.ErrInvalidProviderResponse
}

func invalid(step, format string, args ...any) error {
	return &InvalidResponseError{Step: step, Reason: fmt.Sprintf(format, args...)}
}

var (
	analysisKeys = []string{"scope", "coreFunctionalities", "integrations", "nonFunctionalRequirements", "complexity", "risks"}
	teamKeys     = []string{"teamComposition", "monthlyAllocation", "projectDuration", "phases"}
	scheduleKeys = []string{"sprints", "dependencies", "milestones", "riskBuffer"}
)

// matchBrace returns the index of the brace closing the object opened at s[start],
// or -1 when the object never closes. Braces inside string literals are ignored.
func matchBrace(s string, start int) int {
	depth := 0
	inString := false
	escape := false

	for i := start; i < len(s); i++ {
		b := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// ExtractJSON returns the first well-formed JSON object embedded in text. Every
// opening brace is tried as a start, so stray braces in surrounding prose do not
// hide the object that follows them.
func ExtractJSON(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end >= 0 {
			if candidate := text[start : end+1]; json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func decodeObject(step, text string, required []string, out any) error {
	raw, ok := ExtractJSON(text)
	if !ok {
		return invalid(step, "no JSON object found in response")
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return invalid(step, "malformed JSON: %v", err)
	}
	var missing []string
	for _, key := range required {
		if _, ok := keys[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return invalid(step, "missing required keys: %s", strings.Join(missing, ", "))
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return invalid(step, "unexpected field types: %v", err)
	}
	if err := validate.Struct(out); err != nil {
		return invalid(step, "%s", describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// DecodeAnalysis parses the scope analysis step output
func DecodeAnalysis(text string) (domain.ProjectAnalysis, error) {
	var analysis domain.ProjectAnalysis
	if err := decodeObject(domain.StepAnalyzeScope, text, analysisKeys, &analysis); err != nil {
		return domain.ProjectAnalysis{}, err
	}
	return analysis, nil
}

// DecodeTeam parses the team estimation step output. Allocation arrays longer
// than projectDuration are accepted only when the extra months are all zero,
// and are trimmed.
func DecodeTeam(text string) (domain.TeamEstimation, error) {
	var team domain.TeamEstimation
	if err := decodeObject(domain.StepEstimateTeam, text, teamKeys, &team); err != nil {
		return domain.TeamEstimation{}, err
	}

	for i, alloc := range team.MonthlyAllocation {
		n := len(alloc.HoursPerMonth)
		switch {
		case n < team.ProjectDuration:
			return domain.TeamEstimation{}, invalid(domain.StepEstimateTeam,
				"role %q has %d months of hours, projectDuration is %d", alloc.Role, n, team.ProjectDuration)
		case n > team.ProjectDuration:
			for _, h := range alloc.HoursPerMonth[team.ProjectDuration:] {
				if h != 0 {
					return domain.TeamEstimation{}, invalid(domain.StepEstimateTeam,
						"role %q allocates hours beyond projectDuration %d", alloc.Role, team.ProjectDuration)
				}
			}
			team.MonthlyAllocation[i].HoursPerMonth = alloc.HoursPerMonth[:team.ProjectDuration]
		}
	}
	return team, nil
}

// DecodeSchedule parses the schedule step output
func DecodeSchedule(text string) (domain.Schedule, error) {
	var schedule domain.Schedule
	if err := decodeObject(domain.StepGenerateSchedule, text, scheduleKeys, &schedule); err != nil {
		return domain.Schedule{}, err
	}
	return schedule, nil
}
