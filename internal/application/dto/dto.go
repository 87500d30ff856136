// Package dto define los contratos JSON de la pasarela de sincronización.
package dto

// SessionRequest intercambio de sesión. Token es el token de arranque
// provisto por el entorno anfitrión; ausente o inválido produce un
// principal anónimo en lugar de un error.
type SessionRequest struct {
	Token string `json:"token,omitempty"`
}

// SessionResponse sesión establecida: uid estable (compartible entre
// técnicos) y el JWT de sesión para las rutas protegidas.
type SessionResponse struct {
	UID          string `json:"uid"`
	Anonimo      bool   `json:"anonimo"`
	SessionToken string `json:"session_token"`
}

// DocumentResponse documento de una colección: identificador + campos JSON.
type DocumentResponse struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// SnapshotResponse conjunto completo y actual de una colección.
type SnapshotResponse struct {
	Collection string             `json:"collection"`
	Documents  []DocumentResponse `json:"documents"`
}

// CreateResponse resultado de un alta: el id asignado por el servidor.
type CreateResponse struct {
	ID string `json:"id"`
}

// ErrorResponse respuesta de error uniforme de la API.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"` // errores de validación por campo
}
