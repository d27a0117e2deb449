package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testUserID    = "00000000-0000-0000-0000-000000000001"
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testIssuer    = "stock-ledger-test"
	testExpMin    = 60
)

// bearer firma un token con los claims indicados.
func bearer(t *testing.T, secret, companyID, role string, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(secret, testUserID, companyID, role, testIssuer, expMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// Registrar traslados es de admin y bodeguero; el vendedor solo consulta.
func TestAuth_TrasladosPorRol(t *testing.T) {
	api := newAPI(t, nil)

	for _, role := range []string{pkgjwt.RoleAdmin, pkgjwt.RoleBodeguero} {
		resp, env := api.do(role, http.MethodPost, "/api/distributions", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, role)
		require.NotNil(t, env.Error, role)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code, "%s pasa la autorización y llega a la validación", role)
	}

	resp, env := api.do(pkgjwt.RoleVendedor, http.MethodPost, "/api/distributions", map[string]any{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	resp, env = api.do(pkgjwt.RoleVendedor, http.MethodPut, "/api/distributions/x/cancel", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, env.Success)

	resp, env = api.do(pkgjwt.RoleVendedor, http.MethodGet, "/api/distributions", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)
}

// Ubicaciones y recetas las administra solo el admin.
func TestAuth_CatalogoSoloAdmin(t *testing.T) {
	api := newAPI(t, nil)

	resp, _ := api.do(pkgjwt.RoleBodeguero, http.MethodPost, "/api/locations", map[string]any{"name": "Bodega", "type": "warehouse"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	id := api.create("/api/locations", map[string]any{"name": "Bodega", "type": "warehouse"})

	resp, _ = api.do(pkgjwt.RoleBodeguero, http.MethodDelete, "/api/locations/"+id, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = api.do(pkgjwt.RoleVendedor, http.MethodPost, "/api/recipes", map[string]any{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = api.do(pkgjwt.RoleVendedor, http.MethodGet, "/api/locations/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuth_TokensRechazados(t *testing.T) {
	api := newAPI(t, nil)

	tests := []struct {
		name string
		auth string
		code string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema basic", "Basic dXNlcjpwYXNz", "INVALID_TOKEN"},
		{"token corrupto", "Bearer no.es.jwt", "INVALID_TOKEN"},
		{"firma de otro secreto", bearer(t, "otro-secreto", testCompanyID, pkgjwt.RoleAdmin, testExpMin), "INVALID_TOKEN"},
		{"expirado", bearer(t, testJWTSecret, testCompanyID, pkgjwt.RoleAdmin, -1), "INVALID_TOKEN"},
		{"sin company_id", bearer(t, testJWTSecret, "", pkgjwt.RoleAdmin, testExpMin), "INVALID_TOKEN"},
		{"sin rol", bearer(t, testJWTSecret, testCompanyID, "", testExpMin), "MISSING_ROLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := api.doWithAuth(tt.auth, http.MethodGet, "/api/distributions", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

// La empresa sale del token: otra empresa no ve la ubicación creada.
func TestAuth_EmpresaDelToken(t *testing.T) {
	api := newAPI(t, nil)
	id := api.create("/api/locations", map[string]any{"name": "Cocina", "type": "kitchen"})

	other := bearer(t, testJWTSecret, "00000000-0000-0000-0000-000000000099", pkgjwt.RoleAdmin, testExpMin)
	resp, env := api.doWithAuth(other, http.MethodGet, "/api/locations/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	resp, env = api.doWithAuth(other, http.MethodGet, "/api/locations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, data(t, env)["items"])
}

func TestAuth_HealthSinToken(t *testing.T) {
	api := newAPI(t, nil)
	resp, _ := api.doWithAuth("", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
