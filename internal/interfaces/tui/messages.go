package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ivan0402201/Taller/internal/domain/store"
)

// snapshotMsg envuelve un snapshot del store para entregarlo por el loop de
// mensajes de bubbletea.
type snapshotMsg struct {
	snap store.Snapshot
}

// subErrorMsg envuelve un error de suscripción.
type subErrorMsg struct {
	err error
}

// avisoExpiradoMsg descarta el aviso vigente cuando vence su TTL. gen evita
// que un tick viejo borre un aviso más nuevo.
type avisoExpiradoMsg struct {
	gen int
}

// escucharCambios devuelve un tea.Cmd que bloquea hasta que llega el próximo
// mensaje del canal de suscripciones y lo entrega al loop.
func escucharCambios(canal <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-canal
		if !ok {
			return nil
		}
		return msg
	}
}
