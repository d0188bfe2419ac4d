package roles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/presales-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func professional(role string) domain.Professional {
	p := domain.Professional{Name: role + " person", Role: role, HourlyRate: decimal.NewFromInt(100), Active: true}
	p.ID = uuid.New()
	return p
}

func TestResolve_ExactMatchIgnoresCase(t *testing.T) {
	catalog := []domain.Professional{professional("Backend Developer"), professional("QA Engineer")}

	res, ok := NewResolver(nil).Resolve("  backend   DEVELOPER ", catalog)
	require.True(t, ok)
	assert.Equal(t, MatchExact, res.Method)
	assert.Equal(t, catalog[0].ID, res.Professional.ID)
}

func TestResolve_FamilyMatch(t *testing.T) {
	catalog := []domain.Professional{professional("Senior Frontend"), professional("Backend Specialist")}

	res, ok := NewResolver(nil).Resolve("Backend Dev", catalog)
	require.True(t, ok)
	assert.Equal(t, MatchFamily, res.Method)
	assert.Equal(t, "backend", res.Family)
	assert.Equal(t, catalog[1].ID, res.Professional.ID)
}

func TestResolve_ShortVariantNeedsWordBoundary(t *testing.T) {
	catalog := []domain.Professional{professional("Product Owner")}
	r := NewResolver(nil)

	_, ok := r.Resolve("Support Engineer", catalog)
	assert.False(t, ok)

	res, ok := r.Resolve("PO", catalog)
	require.True(t, ok)
	assert.Equal(t, "product owner", res.Family)
}

func TestResolve_PluralLabels(t *testing.T) {
	backend, frontend, qa := professional("Backend Developer"), professional("Frontend Developer"), professional("QA Engineer")
	catalog := []domain.Professional{backend, frontend, qa}
	r := NewResolver(nil)

	tests := []struct {
		label string
		want  uuid.UUID
	}{
		{"Backend Developers", backend.ID},
		{"Frontend Devs", frontend.ID},
		{"QA Testers", qa.ID},
		{"Senior Backend Engineers", backend.ID},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			res, ok := r.Resolve(tt.label, catalog)
			require.True(t, ok)
			assert.Equal(t, MatchFamily, res.Method)
			assert.Equal(t, tt.want, res.Professional.ID)
		})
	}
}

func TestResolve_ShortVariantMustStandAlone(t *testing.T) {
	catalog := []domain.Professional{professional("Product Owner"), professional("DevOps Engineer")}
	r := NewResolver(nil)

	_, ok := r.Resolve("Portal Developer", catalog)
	assert.False(t, ok)

	res, ok := r.Resolve("SRE", catalog)
	require.True(t, ok)
	assert.Equal(t, "devops", res.Family)
}

func TestResolve_SeveralExactMatchesPreferFamilyThenFirst(t *testing.T) {
	first := professional("Tester")
	second := professional("Tester")
	qa := professional("QA Analyst")

	res, ok := NewResolver(nil).Resolve("tester", []domain.Professional{first, second, qa})
	require.True(t, ok)
	assert.Equal(t, MatchFamily, res.Method)
	assert.Equal(t, qa.ID, res.Professional.ID)

	res, ok = NewResolver(nil).Resolve("tester", []domain.Professional{first, second})
	require.True(t, ok)
	assert.Equal(t, MatchExact, res.Method)
	assert.Equal(t, first.ID, res.Professional.ID)
}

func TestResolve_Unresolved(t *testing.T) {
	catalog := []domain.Professional{professional("Backend Developer")}

	_, ok := NewResolver(nil).Resolve("Data Scientist", catalog)
	assert.False(t, ok)

	warning := Unresolved("Data Scientist", catalog)
	assert.Equal(t, "Data Scientist", warning.Role)
	assert.NotEmpty(t, warning.Reason)

	assert.Equal(t, "no professionals selected", Unresolved("x", nil).Reason)
}

func TestResolve_DeterministicAndIdempotent(t *testing.T) {
	catalog := []domain.Professional{
		professional("Backend Developer"),
		professional("Backend Lead"),
		professional("DevOps"),
		professional("UX Designer"),
	}
	r := NewResolver(nil)
	labels := []string{"backend engineer", "SRE", "ux/ui designer", "Arquiteto", "DevOps"}

	for _, label := range labels {
		first, ok1 := r.Resolve(label, catalog)
		for i := 0; i < 5; i++ {
			again, ok2 := r.Resolve(label, catalog)
			assert.Equal(t, ok1, ok2, label)
			assert.Equal(t, first, again, label)
		}
	}
}

func TestLoadFamilies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "families.yaml")
	content := `
- keyword: data
  variants: ["data engineer", "engenheiro de dados"]
- keyword: backend
  variants: ["api developer"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	families, err := LoadFamilies(path)
	require.NoError(t, err)
	require.Len(t, families, 2)

	catalog := []domain.Professional{professional("Data Platform"), professional("Backend Developer")}
	res, ok := NewResolver(families).Resolve("Engenheiro de Dados", catalog)
	require.True(t, ok)
	assert.Equal(t, catalog[0].ID, res.Professional.ID)

	_, err = LoadFamilies(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFamilies_RejectsMissingKeyword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "families.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- variants: [x]\n"), 0o600))

	_, err := LoadFamilies(path)
	assert.Error(t, err)
}
