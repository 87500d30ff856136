package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ivan0402201/Taller/internal/application/controller"
	"github.com/Ivan0402201/Taller/internal/application/records"
	"github.com/Ivan0402201/Taller/internal/application/session"
	"github.com/Ivan0402201/Taller/internal/domain/store"
	"github.com/Ivan0402201/Taller/internal/infrastructure/memory"
	"github.com/Ivan0402201/Taller/pkg/logger"
)

func armarApp(t *testing.T) (*App, *memory.Store) {
	t.Helper()
	sess := session.New()
	sess.EstablecerPrincipal("secreto-de-test", "")
	almacen := memory.New()
	t.Cleanup(func() { _ = almacen.Close() })
	return NewApp(sess, records.New(almacen, sess, logger.Nop()), logger.Nop()), almacen
}

func tecla(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestLogin_EnterEntraComoAdminYSuscribe(t *testing.T) {
	a, _ := armarApp(t)
	require.Equal(t, vistaLogin, a.vista)

	a.Update(tecla("enter"))

	assert.Equal(t, vistaPrincipal, a.vista)
	assert.Equal(t, session.RoleAdmin, a.sess.Role())
	assert.Len(t, a.subs, len(store.Collections), "al entrar se suscriben las tres colecciones")
}

func TestLogin_SegundaOpcionEsEmpleado(t *testing.T) {
	a, _ := armarApp(t)
	a.Update(tecla("down"))
	a.Update(tecla("enter"))
	assert.Equal(t, session.RoleUser, a.sess.Role())
}

func TestSnapshotDeInventario_LlegaATodasLasPestanasDeCategoria(t *testing.T) {
	a, almacen := armarApp(t)
	a.Update(tecla("enter"))

	_, err := almacen.Create(context.Background(), store.Inventory, store.Fields{
		"name": "Mica templada", "model": "iPhone 15", "category": "Mica", "quantity": 3, "price": 5,
	})
	require.NoError(t, err)

	// drenar el canal de suscripciones como lo haría el loop de bubbletea
	for {
		select {
		case msg := <-a.cambios:
			a.Update(msg)
			continue
		default:
		}
		break
	}

	assert.Len(t, a.inventario[tabMicas].Visible(), 1, "la pestaña Micas ve el item")
	assert.Empty(t, a.inventario[tabFundas].Visible(), "la pestaña Fundas lo filtra")
}

func TestTeclaA_AbreElFormularioDeTickets(t *testing.T) {
	a, _ := armarApp(t)
	a.Update(tecla("enter"))
	require.Equal(t, tabTickets, a.tabActiva)

	a.Update(tecla("a"))

	require.Equal(t, controller.ModeFormulario, a.tickets.Mode())
	require.Len(t, a.inputs, len(camposTicket))
	assert.Equal(t, "PENDIENTE", a.inputs[2].Value(), "el estado parte precargado")
}

func TestEscEnFormulario_VuelveALaLista(t *testing.T) {
	a, _ := armarApp(t)
	a.Update(tecla("enter"))
	a.Update(tecla("a"))
	require.Equal(t, controller.ModeFormulario, a.tickets.Mode())

	a.Update(tecla("esc"))
	assert.Equal(t, controller.ModeLista, a.tickets.Mode())
	assert.Nil(t, a.inputs)
}

func TestAvisoExpirado_GeneracionViejaNoBorraUnoNuevo(t *testing.T) {
	a, _ := armarApp(t)
	_ = a.fijarAviso(&controller.Notice{Titulo: controller.NoticeExito, Mensaje: "uno"})
	genViejo := a.avisoGen
	_ = a.fijarAviso(&controller.Notice{Titulo: controller.NoticeError, Mensaje: "dos"})

	a.Update(avisoExpiradoMsg{gen: genViejo})
	require.NotNil(t, a.aviso, "un tick viejo no descarta el aviso vigente")

	a.Update(avisoExpiradoMsg{gen: a.avisoGen})
	assert.Nil(t, a.aviso)
}

func TestTeclaX_DescartaElAvisoSinEsperarElAutoDescarte(t *testing.T) {
	a, _ := armarApp(t)
	a.Update(tecla("enter"))
	_ = a.fijarAviso(&controller.Notice{Titulo: controller.NoticeError, Mensaje: "algo salió mal"})
	require.NotNil(t, a.aviso)

	a.Update(tecla("x"))
	assert.Nil(t, a.aviso)
}

func TestTeclaX_EnBusquedaEscribeEnVezDeDescartar(t *testing.T) {
	a, _ := armarApp(t)
	a.Update(tecla("enter"))
	a.Update(tecla("/"))
	_ = a.fijarAviso(&controller.Notice{Titulo: controller.NoticeExito, Mensaje: "guardado"})

	a.Update(tecla("x"))
	assert.NotNil(t, a.aviso, "en modo búsqueda la x es texto, no descarte")
	assert.Equal(t, "x", a.buscador.Value())
}

func TestCerrarSesion_CancelaSuscripcionesYVuelveAlLogin(t *testing.T) {
	a, _ := armarApp(t)
	a.Update(tecla("enter"))
	require.NotEmpty(t, a.subs)

	a.cerrarSesion()
	assert.Equal(t, vistaLogin, a.vista)
	assert.Empty(t, a.subs)
	assert.Equal(t, session.RoleNone, a.sess.Role())
	assert.True(t, a.sess.Ready(), "el principal sobrevive al logout")
}
