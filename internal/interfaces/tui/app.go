// Package tui implementa la consola del taller: una aplicación bubbletea con
// pantalla de selección de rol y pestañas para tickets, ventas, inventario
// por categoría y ajustes. Todo el estado CRUD vive en los controladores
// genéricos; este paquete solo enruta teclas y pinta.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ivan0402201/Taller/internal/application/controller"
	"github.com/Ivan0402201/Taller/internal/application/records"
	"github.com/Ivan0402201/Taller/internal/application/session"
	"github.com/Ivan0402201/Taller/internal/domain/entity"
	"github.com/Ivan0402201/Taller/internal/domain/store"
	"github.com/Ivan0402201/Taller/pkg/logger"
)

type vista int

const (
	vistaLogin vista = iota
	vistaPrincipal
)

type tabID int

const (
	tabTickets tabID = iota
	tabVentas
	tabMicas
	tabFundas
	tabAccesorios
	tabHerramientas
	tabAjustes
)

var ordenTabs = []tabID{tabTickets, tabVentas, tabMicas, tabFundas, tabAccesorios, tabHerramientas, tabAjustes}

var nombresTab = map[tabID]string{
	tabTickets:      "Tickets",
	tabVentas:       "Ventas",
	tabMicas:        "Micas",
	tabFundas:       "Fundas",
	tabAccesorios:   "Accesorios",
	tabHerramientas: "Herramientas",
	tabAjustes:      "Ajustes",
}

// categoriaTab asocia cada pestaña de inventario con su categoría.
var categoriaTab = map[tabID]entity.Categoria{
	tabMicas:        entity.CategoriaMica,
	tabFundas:       entity.CategoriaFunda,
	tabAccesorios:   entity.CategoriaAccesorio,
	tabHerramientas: entity.CategoriaHerramienta,
}

// App es el modelo raíz de la consola.
type App struct {
	sess    *session.Session
	fachada *records.Facade
	log     *logger.Logger

	vista       vista
	opcionLogin int

	tabActiva  tabID
	tickets    *controller.Controller
	inventario map[tabID]*controller.Controller
	ventas     []store.Document

	cursor map[tabID]int

	// formulario activo (solo cuando el controlador está en ModeFormulario)
	campos    []campoForm
	inputs    []textinput.Model
	focoInput int

	// búsqueda sobre la lista activa
	buscador textinput.Model
	buscando bool

	aviso    *controller.Notice
	avisoGen int

	cambios chan tea.Msg
	subs    []store.Subscription

	ancho int
	alto  int
}

// NewApp construye la consola con sus controladores de pantalla.
func NewApp(sess *session.Session, fachada *records.Facade, log *logger.Logger) *App {
	inventario := make(map[tabID]*controller.Controller, len(categoriaTab))
	for tab, cat := range categoriaTab {
		ctrl := controller.New(controller.DescriptorInventario(), sess, fachada)
		ctrl.SetCategoryFilter(strings.ToLower(string(cat)))
		inventario[tab] = ctrl
	}
	buscador := textinput.New()
	buscador.Placeholder = "buscar..."
	buscador.CharLimit = 80
	return &App{
		sess:       sess,
		fachada:    fachada,
		log:        log,
		tickets:    controller.New(controller.DescriptorTickets(), sess, fachada),
		inventario: inventario,
		cursor:     make(map[tabID]int),
		buscador:   buscador,
		cambios:    make(chan tea.Msg, 16),
	}
}

// Init implementa tea.Model: queda escuchando el canal de suscripciones.
func (a *App) Init() tea.Cmd {
	return escucharCambios(a.cambios)
}

// suscribir registra las consultas en vivo del dataset. Se llama al entrar
// (tras elegir rol); cancelar() las desregistra al salir para que una vista
// nueva jamás reciba datos de una sesión vieja.
func (a *App) suscribir() {
	empujar := func(msg tea.Msg) {
		for {
			select {
			case a.cambios <- msg:
				return
			default:
				// canal lleno: descartar lo más viejo, cada snapshot
				// reemplaza por completo al anterior
				select {
				case <-a.cambios:
				default:
				}
			}
		}
	}
	ctx := context.Background()
	for _, col := range store.Collections {
		col := col
		sub := a.fachada.Subscribe(ctx, col,
			func(s store.Snapshot) { empujar(snapshotMsg{snap: s}) },
			func(err error) { empujar(subErrorMsg{err: err}) },
		)
		a.subs = append(a.subs, sub)
	}
}

func (a *App) cancelarSubs() {
	for _, sub := range a.subs {
		sub.Cancel()
	}
	a.subs = nil
}

// ctrlActivo devuelve el controlador de la pestaña activa, o nil para las
// pestañas sin CRUD (ventas, ajustes).
func (a *App) ctrlActivo() *controller.Controller {
	switch {
	case a.tabActiva == tabTickets:
		return a.tickets
	case categoriaTab[a.tabActiva] != "":
		return a.inventario[a.tabActiva]
	}
	return nil
}

func (a *App) camposActivos() []campoForm {
	if a.tabActiva == tabTickets {
		return camposTicket
	}
	return camposInventario
}

// fijarAviso reemplaza el aviso vigente y programa su expiración.
func (a *App) fijarAviso(n *controller.Notice) tea.Cmd {
	if n == nil {
		return nil
	}
	a.aviso = n
	a.avisoGen++
	gen := a.avisoGen
	return tea.Tick(controller.NoticeTTL, func(time.Time) tea.Msg {
		return avisoExpiradoMsg{gen: gen}
	})
}

// capturarAviso mueve el aviso producido por la última acción del controlador
// al nivel de la app, donde se pinta y expira.
func (a *App) capturarAviso(ctrl *controller.Controller) tea.Cmd {
	if ctrl == nil || ctrl.Aviso() == nil {
		return nil
	}
	n := ctrl.Aviso()
	ctrl.ClearNotice()
	return a.fijarAviso(n)
}

// Update implementa tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.ancho, a.alto = msg.Width, msg.Height
		return a, nil

	case snapshotMsg:
		a.aplicarSnapshot(msg.snap)
		return a, escucharCambios(a.cambios)

	case subErrorMsg:
		a.log.Error().Err(msg.err).Msg("error de suscripción")
		cmd := a.fijarAviso(&controller.Notice{Titulo: controller.NoticeErrorSistema, Mensaje: msg.err.Error()})
		return a, tea.Batch(cmd, escucharCambios(a.cambios))

	case avisoExpiradoMsg:
		if msg.gen == a.avisoGen {
			a.aviso = nil
		}
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			a.cancelarSubs()
			return a, tea.Quit
		}
		if a.vista == vistaLogin {
			return a.actualizarLogin(msg)
		}
		return a.actualizarPrincipal(msg)
	}
	return a, nil
}

func (a *App) aplicarSnapshot(snap store.Snapshot) {
	switch snap.Collection {
	case store.Tickets:
		a.tickets.ApplySnapshot(snap)
	case store.Inventory:
		for _, ctrl := range a.inventario {
			ctrl.ApplySnapshot(snap)
		}
	case store.Sales:
		docs := make([]store.Document, len(snap.Documents))
		copy(docs, snap.Documents)
		controller.OrdenarPorFechaDesc(docs)
		a.ventas = docs
	}
	// una lista que se encogió no puede dejar el cursor fuera de rango
	for tab := range a.cursor {
		if total := a.totalFilas(tab); a.cursor[tab] >= total {
			a.cursor[tab] = max(0, total-1)
		}
	}
}

func (a *App) actualizarLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if a.opcionLogin > 0 {
			a.opcionLogin--
		}
	case "down", "j":
		if a.opcionLogin < 1 {
			a.opcionLogin++
		}
	case "enter":
		rol := session.RoleAdmin
		if a.opcionLogin == 1 {
			rol = session.RoleUser
		}
		a.sess.SetRole(rol)
		a.suscribir()
		a.vista = vistaPrincipal
		a.tabActiva = tabTickets
	case "q":
		a.cancelarSubs()
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) actualizarPrincipal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := a.ctrlActivo()

	if ctrl != nil && ctrl.Mode() == controller.ModeFormulario {
		return a.actualizarFormulario(msg, ctrl)
	}
	if ctrl != nil && ctrl.Mode() == controller.ModeConfirmarBorrado {
		return a.actualizarConfirmacion(msg, ctrl)
	}
	if a.buscando {
		return a.actualizarBusqueda(msg, ctrl)
	}
	return a.actualizarLista(msg, ctrl)
}

func (a *App) actualizarLista(msg tea.KeyMsg, ctrl *controller.Controller) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		a.cancelarSubs()
		return a, tea.Quit
	case "right", "tab":
		a.tabActiva = ordenTabs[(int(a.tabActiva)+1)%len(ordenTabs)]
	case "left", "shift+tab":
		a.tabActiva = ordenTabs[(int(a.tabActiva)+len(ordenTabs)-1)%len(ordenTabs)]
	case "up", "k":
		if a.cursor[a.tabActiva] > 0 {
			a.cursor[a.tabActiva]--
		}
	case "down", "j":
		if a.cursor[a.tabActiva] < a.totalFilas(a.tabActiva)-1 {
			a.cursor[a.tabActiva]++
		}
	case "/":
		if ctrl != nil {
			a.buscando = true
			a.buscador.SetValue(ctrl.Busqueda())
			a.buscador.Focus()
		}
	case "a":
		if ctrl != nil {
			ctrl.StartAdd()
			if ctrl.Mode() == controller.ModeFormulario {
				a.abrirFormulario(ctrl)
				return a, nil
			}
			return a, a.capturarAviso(ctrl)
		}
	case "e", "enter":
		if ctrl != nil {
			if doc, ok := a.filaSeleccionada(ctrl); ok {
				ctrl.StartEdit(doc)
				if ctrl.Mode() == controller.ModeFormulario {
					a.abrirFormulario(ctrl)
					return a, nil
				}
				return a, a.capturarAviso(ctrl)
			}
		}
	case "d":
		if ctrl != nil {
			if doc, ok := a.filaSeleccionada(ctrl); ok {
				ctrl.RequestDelete(doc)
				return a, a.capturarAviso(ctrl)
			}
		}
	case "l":
		if a.tabActiva == tabAjustes {
			a.cerrarSesion()
		}
	case "x":
		// el aviso también se descarta a mano, sin esperar el auto-descarte
		a.aviso = nil
	}
	return a, nil
}

func (a *App) actualizarBusqueda(msg tea.KeyMsg, ctrl *controller.Controller) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.buscando = false
		a.buscador.Blur()
		return a, nil
	case "esc":
		a.buscando = false
		a.buscador.Blur()
		a.buscador.SetValue("")
		if ctrl != nil {
			ctrl.SetSearch("")
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.buscador, cmd = a.buscador.Update(msg)
	if ctrl != nil {
		ctrl.SetSearch(a.buscador.Value())
		a.cursor[a.tabActiva] = 0
	}
	return a, cmd
}

func (a *App) actualizarFormulario(msg tea.KeyMsg, ctrl *controller.Controller) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		ctrl.Cancel()
		a.inputs = nil
		return a, nil
	case "tab", "down":
		a.moverFoco(1)
		return a, nil
	case "shift+tab", "up":
		a.moverFoco(-1)
		return a, nil
	case "enter":
		volcarInputs(ctrl, a.campos, a.inputs)
		ctrl.Save(context.Background())
		if ctrl.Mode() == controller.ModeFormulario {
			// errores de validación o de store: el borrador sigue vivo
			return a, a.capturarAviso(ctrl)
		}
		a.inputs = nil
		return a, a.capturarAviso(ctrl)
	}
	var cmd tea.Cmd
	a.inputs[a.focoInput], cmd = a.inputs[a.focoInput].Update(msg)
	return a, cmd
}

func (a *App) actualizarConfirmacion(msg tea.KeyMsg, ctrl *controller.Controller) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s", "y", "enter":
		ctrl.ConfirmDelete(context.Background())
		return a, a.capturarAviso(ctrl)
	case "n", "esc":
		ctrl.CancelDelete()
	}
	return a, nil
}

func (a *App) abrirFormulario(ctrl *controller.Controller) {
	a.campos = a.camposActivos()
	a.inputs = construirInputs(a.campos, ctrl.Draft())
	a.focoInput = 0
}

func (a *App) moverFoco(delta int) {
	a.inputs[a.focoInput].Blur()
	a.focoInput = (a.focoInput + delta + len(a.inputs)) % len(a.inputs)
	a.inputs[a.focoInput].Focus()
}

// cerrarSesion vuelve al login: cancela las suscripciones y reinicia el rol.
// El principal de backend sobrevive, igual que los datos al volver a entrar.
func (a *App) cerrarSesion() {
	a.cancelarSubs()
	a.sess.Logout()
	a.vista = vistaLogin
	a.opcionLogin = 0
	a.buscando = false
	a.buscador.SetValue("")
	a.tickets.SetSearch("")
	for _, ctrl := range a.inventario {
		ctrl.SetSearch("")
	}
}

// totalFilas cuenta las filas visibles de una pestaña para acotar el cursor.
func (a *App) totalFilas(tab tabID) int {
	switch {
	case tab == tabTickets:
		return len(a.tickets.Visible())
	case categoriaTab[tab] != "":
		return len(a.inventario[tab].Visible())
	case tab == tabVentas:
		return len(a.ventas)
	}
	return 0
}

func (a *App) filaSeleccionada(ctrl *controller.Controller) (store.Document, bool) {
	visibles := ctrl.Visible()
	idx := a.cursor[a.tabActiva]
	if idx < 0 || idx >= len(visibles) {
		return store.Document{}, false
	}
	return visibles[idx], true
}

// View implementa tea.Model.
func (a *App) View() string {
	if a.vista == vistaLogin {
		return a.vistaLogin()
	}
	var b strings.Builder
	b.WriteString(estiloTitulo.Render("Taller Móvil Pro"))
	b.WriteString("  ")
	b.WriteString(a.barraPestanas())
	b.WriteString("\n\n")

	ctrl := a.ctrlActivo()
	switch {
	case ctrl != nil && ctrl.Mode() == controller.ModeFormulario:
		b.WriteString(a.vistaFormulario(ctrl))
	case ctrl != nil && ctrl.Mode() == controller.ModeConfirmarBorrado:
		b.WriteString(a.vistaConfirmacion(ctrl))
	case a.tabActiva == tabAjustes:
		b.WriteString(a.vistaAjustes())
	case a.tabActiva == tabVentas:
		b.WriteString(a.vistaVentas())
	default:
		b.WriteString(a.vistaLista(ctrl))
	}

	b.WriteString("\n")
	if a.aviso != nil {
		estilo := estiloAvisoExito
		if a.aviso.Titulo != controller.NoticeExito && a.aviso.Titulo != controller.NoticeEliminado {
			estilo = estiloAvisoError
		}
		b.WriteString(estilo.Render(a.aviso.Titulo+": "+a.aviso.Mensaje) + "\n")
	}
	b.WriteString(a.barraAyuda(ctrl))
	return b.String()
}

func (a *App) vistaLogin() string {
	p := a.sess.Principal()
	opciones := []string{"Administrador", "Empleado"}
	var b strings.Builder
	b.WriteString(estiloTitulo.Render("Taller Móvil Pro") + "\n\n")
	b.WriteString("¿Con qué rol entras hoy?\n\n")
	for i, op := range opciones {
		if i == a.opcionLogin {
			b.WriteString(estiloFilaActiva.Render("> "+op) + "\n")
		} else {
			b.WriteString(estiloFila.Render("  "+op) + "\n")
		}
	}
	b.WriteString("\n" + estiloEtiqueta.Render("ID de sesión: "+p.UID) + "\n")
	if !a.fachada.Disponible() {
		b.WriteString(estiloAvisoError.Render("Sin almacén configurado: las pantallas quedarán vacías") + "\n")
	}
	b.WriteString("\n" + estiloAyuda.Render("↑/↓ elegir · enter entrar · q salir"))
	return estiloPanel.Render(b.String())
}

func (a *App) barraPestanas() string {
	partes := make([]string, 0, len(ordenTabs))
	for _, tab := range ordenTabs {
		if tab == a.tabActiva {
			partes = append(partes, estiloPestanaActiva.Render(nombresTab[tab]))
		} else {
			partes = append(partes, estiloPestana.Render(nombresTab[tab]))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, partes...)
}

func (a *App) vistaLista(ctrl *controller.Controller) string {
	var b strings.Builder
	if a.buscando || ctrl.Busqueda() != "" {
		b.WriteString("Buscar: " + a.buscador.View() + "\n\n")
	}
	visibles := ctrl.Visible()
	if len(visibles) == 0 {
		b.WriteString(estiloEtiqueta.Render("(sin registros)") + "\n")
		return b.String()
	}
	for i, doc := range visibles {
		linea := a.formatearFila(doc)
		if i == a.cursor[a.tabActiva] {
			b.WriteString(estiloFilaActiva.Render(linea) + "\n")
		} else {
			b.WriteString(estiloFila.Render(linea) + "\n")
		}
	}
	return b.String()
}

func (a *App) formatearFila(doc store.Document) string {
	if a.tabActiva == tabTickets {
		t := entity.TicketFromDocument(doc)
		fecha := "—"
		if !t.CreatedAt.IsZero() {
			fecha = t.CreatedAt.Local().Format("02/01 15:04")
		}
		return fmt.Sprintf("%-12s %-20s %-24s [%s]", fecha, recortar(t.Cliente, 20), recortar(t.Equipo, 24), t.Estado)
	}
	it := entity.ItemFromDocument(doc)
	return fmt.Sprintf("%-24s %-20s x%-4d $%s", recortar(it.Name, 24), recortar(it.Model, 20), it.Quantity, it.Price.StringFixed(2))
}

func (a *App) vistaVentas() string {
	var b strings.Builder
	if len(a.ventas) == 0 {
		b.WriteString(estiloEtiqueta.Render("(sin ventas registradas)") + "\n")
		return b.String()
	}
	for i, doc := range a.ventas {
		v := entity.SaleFromDocument(doc)
		fecha := "—"
		if !v.CreatedAt.IsZero() {
			fecha = v.CreatedAt.Local().Format("02/01 15:04")
		}
		linea := fmt.Sprintf("%-12s %2d línea(s)  $%s", fecha, len(v.Lineas), v.Total.StringFixed(2))
		if i == a.cursor[a.tabActiva] {
			b.WriteString(estiloFilaActiva.Render(linea) + "\n")
		} else {
			b.WriteString(estiloFila.Render(linea) + "\n")
		}
	}
	return b.String()
}

func (a *App) vistaFormulario(ctrl *controller.Controller) string {
	var b strings.Builder
	titulo := "Nuevo registro"
	if ctrl.Editing() {
		titulo = "Editar registro"
	}
	b.WriteString(estiloTitulo.Render(titulo) + "\n\n")
	for i, campo := range a.campos {
		b.WriteString(estiloEtiqueta.Render(campo.titulo) + "\n")
		b.WriteString(a.inputs[i].View() + "\n")
		if msg := ctrl.ErrorCampo(campo.clave); msg != "" {
			b.WriteString(estiloErrorCampo.Render("  ! "+msg) + "\n")
		}
	}
	return estiloPanel.Render(b.String())
}

func (a *App) vistaConfirmacion(ctrl *controller.Controller) string {
	doc := ctrl.Objetivo()
	detalle := a.formatearFila(doc)
	cuerpo := "¿Eliminar este registro?\n\n" + detalle + "\n\n" +
		estiloErrorCampo.Render("El borrado es definitivo, no se puede deshacer.") + "\n\n" +
		estiloAyuda.Render("s/enter confirmar · n/esc cancelar")
	return estiloPanel.Render(cuerpo)
}

func (a *App) vistaAjustes() string {
	p := a.sess.Principal()
	tipo := "con token"
	if p.Anonimo {
		tipo = "anónima"
	}
	almacen := "disponible"
	if !a.fachada.Disponible() {
		almacen = "no configurado"
	}
	var b strings.Builder
	b.WriteString("Rol actual:   " + string(a.sess.Role()) + "\n")
	b.WriteString("Sesión:       " + tipo + "\n")
	b.WriteString("ID (compartible con el equipo):\n  " + p.UID + "\n")
	b.WriteString("Almacén:      " + almacen + "\n\n")
	b.WriteString(estiloAyuda.Render("l cerrar sesión (cambiar de rol)"))
	return estiloPanel.Render(b.String())
}

func (a *App) barraAyuda(ctrl *controller.Controller) string {
	switch {
	case ctrl != nil && ctrl.Mode() == controller.ModeFormulario:
		return estiloAyuda.Render("tab siguiente campo · enter guardar · esc cancelar")
	case ctrl != nil && ctrl.Mode() == controller.ModeConfirmarBorrado:
		return estiloAyuda.Render("s confirmar · n cancelar")
	case a.buscando:
		return estiloAyuda.Render("escribe para filtrar · enter fijar · esc limpiar")
	case ctrl != nil:
		ayuda := "←/→ pestañas · ↑/↓ mover · a añadir · e editar · d eliminar · / buscar · q salir"
		if a.aviso != nil {
			ayuda += " · x cerrar aviso"
		}
		return estiloAyuda.Render(ayuda)
	default:
		return estiloAyuda.Render("←/→ pestañas · q salir")
	}
}

func recortar(s string, max int) string {
	runas := []rune(s)
	if len(runas) <= max {
		return s
	}
	if max <= 1 {
		return string(runas[:max])
	}
	return string(runas[:max-1]) + "…"
}
