// Package session mantiene el estado efímero de la sesión local: el
// principal reconocido por el backend y el rol de UI elegido en el login.
// Son cosas distintas y no deben mezclarse: el principal persiste entre
// cambios de rol y autoriza el acceso al dataset; el rol solo decide qué
// acciones ofrece la interfaz.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Ivan0402201/Taller/pkg/token"
)

// Role es el modo local de la UI. No viaja al backend ni se verifica ahí.
type Role string

const (
	RoleNone  Role = ""      // sin rol elegido: pantalla de login
	RoleAdmin Role = "Admin" // mutación total
	RoleUser  Role = "User"  // empleado: lectura + tickets
)

// Principal es la identidad (anónima o por token) reconocida por el backend.
// El UID es un handle estable y compartible; no lleva semántica de
// autorización propia.
type Principal struct {
	UID     string
	Anonimo bool
}

// Session estado de sesión local, seguro para uso concurrente.
type Session struct {
	mu        sync.RWMutex
	principal Principal
	role      Role
	ready     bool
}

// New crea una sesión sin principal ni rol.
func New() *Session {
	return &Session{}
}

// EstablecerPrincipal fija la identidad de backend y marca la sesión como
// "auth listo". Si bootstrapToken es válido se usa su uid; si está ausente o
// inválido se cae a un principal anónimo (misma degradación que la fuente:
// un fallo de sign-in nunca bloquea la consola).
func (s *Session) EstablecerPrincipal(secret, bootstrapToken string) Principal {
	p := Principal{UID: "anon-" + uuid.New().String(), Anonimo: true}
	if bootstrapToken != "" {
		if uid, _, err := token.Parse(secret, bootstrapToken); err == nil && uid != "" {
			p = Principal{UID: uid}
		}
	}
	s.mu.Lock()
	s.principal = p
	s.ready = true
	s.mu.Unlock()
	return p
}

// Principal devuelve la identidad actual.
func (s *Session) Principal() Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal
}

// Ready indica si ya hay un principal establecido. La UI debe gatear toda
// interacción con el store en esta señal, no en fallos de operación.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// SetRole fija el rol de UI elegido en el login.
func (s *Session) SetRole(r Role) {
	s.mu.Lock()
	s.role = r
	s.mu.Unlock()
}

// Role devuelve el rol de UI actual.
func (s *Session) Role() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

// Logout reinicia el rol a "sin elegir" y vuelve a la pantalla de login.
// El principal NO se toca: la identidad de backend sobrevive al cambio de rol.
func (s *Session) Logout() {
	s.mu.Lock()
	s.role = RoleNone
	s.mu.Unlock()
}
