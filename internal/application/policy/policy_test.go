package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ivan0402201/Taller/internal/application/policy"
	"github.com/Ivan0402201/Taller/internal/application/session"
	"github.com/Ivan0402201/Taller/internal/domain/store"
)

func TestCanMutate_AdminMutaTodo(t *testing.T) {
	for _, c := range store.Collections {
		assert.True(t, policy.CanMutate(session.RoleAdmin, c),
			"Admin debe poder mutar %s", c)
	}
}

func TestCanMutate_UserSoloTickets(t *testing.T) {
	assert.True(t, policy.CanMutate(session.RoleUser, store.Tickets))
	assert.False(t, policy.CanMutate(session.RoleUser, store.Inventory))
	assert.False(t, policy.CanMutate(session.RoleUser, store.Sales))
}

func TestCanMutate_SinRolNoMutaNada(t *testing.T) {
	for _, c := range store.Collections {
		assert.False(t, policy.CanMutate(session.RoleNone, c),
			"sin rol elegido no debe haber mutación en %s", c)
	}
}

func TestCanMutate_ColeccionDesconocida(t *testing.T) {
	assert.False(t, policy.CanMutate(session.RoleAdmin, store.Collection("clientes")))
}
