package domain

import "errors"

// Errores de dominio (sin dependencias externas). Ninguno es fatal: cada uno
// degrada a un aviso de UI y una oportunidad de reintento.
var (
	ErrValidacion        = errors.New("datos inválidos")
	ErrAccesoDenegado    = errors.New("acceso denegado")
	ErrStoreNoDisponible = errors.New("almacén no configurado")
	ErrOperacionStore    = errors.New("operación del almacén falló")
	ErrNoEncontrado      = errors.New("recurso no encontrado")
	ErrColeccionInvalida = errors.New("colección desconocida")
)
