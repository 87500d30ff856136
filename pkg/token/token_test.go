package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ivan0402201/Taller/pkg/token"
)

const (
	testSecret = "secreto-de-test-para-tokens"
	testUID    = "tecnico-7"
	testAppID  = "taller-test"
	testIssuer = "taller-test"
)

func TestGenerateAndParse(t *testing.T) {
	tok, err := token.Generate(testSecret, testUID, testAppID, testIssuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	uid, appID, err := token.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testUID, uid)
	assert.Equal(t, testAppID, appID)
}

func TestParse_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := token.Generate(testSecret, testUID, testAppID, testIssuer, -1)
	require.NoError(t, err)

	_, _, err = token.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := token.Generate(testSecret, testUID, testAppID, testIssuer, 60)
	require.NoError(t, err)

	_, _, err = token.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestGenerate_SecretVacio_RetornaError(t *testing.T) {
	_, err := token.Generate("", testUID, testAppID, testIssuer, 60)
	assert.Error(t, err)
}
