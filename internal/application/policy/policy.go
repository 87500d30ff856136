// Package policy decide qué mutaciones ofrece la interfaz según el rol.
//
// ADVERTENCIA: esto NO es una frontera de seguridad. La política se evalúa
// solo en el cliente; el backend no la aplica y cualquier acceso directo al
// almacén la pasa por alto. Es una limitación conocida del sistema, no un
// hueco a tapar aquí.
package policy

import (
	"github.com/Ivan0402201/Taller/internal/application/session"
	"github.com/Ivan0402201/Taller/internal/domain/store"
)

// CanMutate indica si el rol puede crear/editar/borrar en la colección.
//
//	Admin -> inventory, tickets y sales.
//	User  -> solo tickets (los empleados gestionan tickets libremente;
//	         pendiente de confirmar con producto si es intencional).
//
// Ventas: sin comportamiento en la fuente (pantalla stub); por defecto
// solo-Admin.
func CanMutate(role session.Role, c store.Collection) bool {
	switch role {
	case session.RoleAdmin:
		return c.Valid()
	case session.RoleUser:
		return c == store.Tickets
	}
	return false
}
