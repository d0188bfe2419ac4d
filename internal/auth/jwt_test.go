package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestExtractRoles(t *testing.T) {
	claims := jwt.MapClaims{"roles": []interface{}{"Estimator", "reviewer"}, "role": "admin"}
	assert.Equal(t, []Role{RoleEstimator, RoleReviewer, RoleAdmin}, ExtractRoles(claims))
	assert.Empty(t, ExtractRoles(jwt.MapClaims{}))
}

func TestExtractRoles_AppRolePrefixAndUnknown(t *testing.T) {
	claims := jwt.MapClaims{"roles": []string{"Presales.Reviewer", "reviewer", "Presales.Estimator", "Finance.Viewer", "api_service"}}
	assert.Equal(t, []Role{RoleReviewer, RoleEstimator}, ExtractRoles(claims))
}

func TestHasRequiredScope(t *testing.T) {
	scopes := ExtractScopes(jwt.MapClaims{"scp": "Proposals.Read Proposals.Write"})
	assert.True(t, HasRequiredScope(scopes, "proposals.write"))
	assert.True(t, HasRequiredScope(scopes, " "))
	assert.False(t, HasRequiredScope(scopes, "Catalog.Admin"))
}
