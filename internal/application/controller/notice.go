package controller

import "time"

// NoticeTTL es cuánto vive un aviso antes de auto-descartarse.
const NoticeTTL = 4 * time.Second

// Tipos de aviso; coinciden con los títulos que muestra la caja de mensaje.
const (
	NoticeExito          = "Éxito"
	NoticeError          = "Error"
	NoticeAccesoDenegado = "Acceso Denegado"
	NoticeEliminado      = "Eliminado"
	NoticeErrorSistema   = "Error del Sistema"
)

// Notice es un aviso descartable para el usuario. Solo hay uno a la vez:
// fijar uno nuevo reemplaza al anterior.
type Notice struct {
	Titulo  string
	Mensaje string
}
