package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "jwt-test-secret"

func TestParse_DevuelveClaims(t *testing.T) {
	tok, err := Generate(secret, "u1", "c1", RoleBodeguero, "stock-ledger", 5)
	require.NoError(t, err)

	userID, companyID, role, err := Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "c1", companyID)
	assert.Equal(t, RoleBodeguero, role)
}

func TestParse_RequiereEmpresa(t *testing.T) {
	tok, err := Generate(secret, "u1", "", RoleAdmin, "stock-ledger", 5)
	require.NoError(t, err)

	_, _, _, err = Parse(secret, tok)
	assert.ErrorContains(t, err, "company_id")
}

func TestParse_Rechazos(t *testing.T) {
	expired, err := Generate(secret, "u1", "c1", RoleAdmin, "stock-ledger", -1)
	require.NoError(t, err)
	_, _, _, err = Parse(secret, expired)
	assert.Error(t, err)

	tok, err := Generate(secret, "u1", "c1", RoleAdmin, "stock-ledger", 5)
	require.NoError(t, err)
	_, _, _, err = Parse("otro", tok)
	assert.Error(t, err)
	_, _, _, err = Parse("", tok)
	assert.Error(t, err)

	_, err = Generate("", "u1", "c1", RoleAdmin, "stock-ledger", 5)
	assert.Error(t, err)
}
