// Package roles maps free-text role labels from an estimate onto catalog professionals.
package roles

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/straye-as/presales-api/internal/domain"
	"gopkg.in/yaml.v3"
)

// Family groups variant phrasings of one role under a catalog keyword.
type Family struct {
	Keyword  string   `yaml:"keyword"`
	Variants []string `yaml:"variants"`
}

// MatchMethod records which step of the algorithm produced a match.
type MatchMethod string

const (
	MatchExact  MatchMethod = "exact"
	MatchFamily MatchMethod = "family"
)

// Resolution is a successful match.
type Resolution struct {
	Professional domain.Professional
	Method       MatchMethod
	Family       string
}

// DefaultFamilies is the built-in keyword table. Order matters: the first family
// whose variants appear in a label and whose keyword has a catalog entry wins.
func DefaultFamilies() []Family {
	return []Family{
		{Keyword: "backend", Variants: []string{"backend developer", "desenvolvedor backend", "backend dev", "backend engineer", "back-end"}},
		{Keyword: "frontend", Variants: []string{"frontend developer", "desenvolvedor frontend", "frontend dev", "frontend engineer", "front-end"}},
		{Keyword: "qa", Variants: []string{"qa engineer", "qa tester", "analista de testes", "quality assurance", "tester"}},
		{Keyword: "devops", Variants: []string{"devops engineer", "devops", "sre", "site reliability"}},
		{Keyword: "designer", Variants: []string{"ux designer", "ui designer", "ux/ui designer", "product designer"}},
		{Keyword: "architect", Variants: []string{"arquiteto", "architect", "arquiteto de software"}},
		{Keyword: "tech lead", Variants: []string{"tech lead", "technical lead", "líder técnico"}},
		{Keyword: "product owner", Variants: []string{"product owner", "po", "gerente de produto"}},
	}
}

// LoadFamilies reads a YAML list of families from path.
func LoadFamilies(path string) ([]Family, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read role families: %w", err)
	}

	var families []Family
	if err := yaml.Unmarshal(data, &families); err != nil {
		return nil, fmt.Errorf("failed to parse role families: %w", err)
	}
	for i, f := range families {
		if strings.TrimSpace(f.Keyword) == "" {
			return nil, fmt.Errorf("role family %d has no keyword", i)
		}
	}
	return families, nil
}

// Resolver is safe for concurrent use; it never mutates its table.
type Resolver struct {
	families []Family
}

// NewResolver normalizes the table once. A nil table selects DefaultFamilies.
func NewResolver(families []Family) *Resolver {
	if families == nil {
		families = DefaultFamilies()
	}
	normalized := make([]Family, 0, len(families))
	for _, f := range families {
		nf := Family{Keyword: normalize(f.Keyword)}
		for _, v := range f.Variants {
			if v = normalize(v); v != "" {
				nf.Variants = append(nf.Variants, v)
			}
		}
		normalized = append(normalized, nf)
	}
	return &Resolver{families: normalized}
}

// Resolve finds the catalog entry for label. The bool is false when the label is unresolved.
func (r *Resolver) Resolve(label string, catalog []domain.Professional) (Resolution, bool) {
	target := normalize(label)
	if target == "" {
		return Resolution{}, false
	}

	var exact []domain.Professional
	for _, p := range catalog {
		if normalize(p.Role) == target {
			exact = append(exact, p)
		}
	}
	if len(exact) == 1 {
		return Resolution{Professional: exact[0], Method: MatchExact}, true
	}

	for _, family := range r.families {
		if !containsAnyPhrase(target, family.Variants) {
			continue
		}
		for _, p := range catalog {
			if strings.Contains(normalize(p.Role), family.Keyword) {
				return Resolution{Professional: p, Method: MatchFamily, Family: family.Keyword}, true
			}
		}
	}

	if len(exact) > 1 {
		return Resolution{Professional: exact[0], Method: MatchExact}, true
	}
	return Resolution{}, false
}

// Unresolved builds the warning reported for a label with no match.
func Unresolved(label string, catalog []domain.Professional) domain.UnresolvedRole {
	reason := "no catalog role matches label or role family"
	if len(catalog) == 0 {
		reason = "no professionals selected"
	}
	return domain.UnresolvedRole{Role: label, Reason: reason}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// containsAnyPhrase reports whether any phrase occurs in s starting at a word
// boundary. Plurals and suffixes are allowed ("backend developers"), except for
// abbreviations of up to shortVariantLen bytes, which must stand alone so "po"
// fires neither inside "support" nor on "portal".
func containsAnyPhrase(s string, phrases []string) bool {
	for _, phrase := range phrases {
		if containsPhrase(s, phrase) {
			return true
		}
	}
	return false
}

const shortVariantLen = 3

func containsPhrase(s, phrase string) bool {
	for offset := 0; offset <= len(s)-len(phrase); {
		idx := strings.Index(s[offset:], phrase)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(phrase)
		if boundaryBefore(s, start) && (len(phrase) > shortVariantLen || boundaryAfter(s, end)) {
			return true
		}
		offset = start + 1
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	return !isWordRune(rune(s[i-1]))
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	return !isWordRune(rune(s[i]))
}

func isWordRune(r rune) bool {
	return r >= 0x80 || unicode.IsLetter(r) || unicode.IsDigit(r)
}
