package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ivan0402201/Taller/internal/application/session"
	"github.com/Ivan0402201/Taller/pkg/token"
)

const testSecret = "secreto-de-test"

func TestEstablecerPrincipal_SinToken_EsAnonimo(t *testing.T) {
	s := session.New()
	assert.False(t, s.Ready())

	p := s.EstablecerPrincipal(testSecret, "")
	assert.True(t, p.Anonimo)
	assert.NotEmpty(t, p.UID)
	assert.True(t, s.Ready(), "con principal establecido la sesión queda lista")
}

func TestEstablecerPrincipal_TokenValido_UsaSuUID(t *testing.T) {
	bootstrap, err := token.Generate(testSecret, "tecnico-7", "taller", "taller", 60)
	require.NoError(t, err)

	s := session.New()
	p := s.EstablecerPrincipal(testSecret, bootstrap)
	assert.False(t, p.Anonimo)
	assert.Equal(t, "tecnico-7", p.UID)
}

func TestEstablecerPrincipal_TokenInvalido_DegradaAAnonimo(t *testing.T) {
	s := session.New()
	p := s.EstablecerPrincipal(testSecret, "token.roto.aqui")
	assert.True(t, p.Anonimo, "un fallo de sign-in nunca bloquea la consola")
	assert.True(t, s.Ready())
}

func TestLogout_ReiniciaElRolPeroNoElPrincipal(t *testing.T) {
	s := session.New()
	p := s.EstablecerPrincipal(testSecret, "")
	s.SetRole(session.RoleAdmin)
	require.Equal(t, session.RoleAdmin, s.Role())

	s.Logout()
	assert.Equal(t, session.RoleNone, s.Role(), "al salir se vuelve a la pantalla de login")
	assert.Equal(t, p.UID, s.Principal().UID, "la identidad de backend sobrevive al cambio de rol")
	assert.True(t, s.Ready())
}
