package controller_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ivan0402201/Taller/internal/application/controller"
	"github.com/Ivan0402201/Taller/internal/application/records"
	"github.com/Ivan0402201/Taller/internal/application/session"
	"github.com/Ivan0402201/Taller/internal/domain/store"
	"github.com/Ivan0402201/Taller/internal/infrastructure/memory"
)

// banco arma una pantalla completa contra el almacén en memoria: sesión con
// principal listo, fachada, controlador y suscripción que le aplica cada
// snapshot. El fan-out síncrono del almacén vuelve determinista el flujo.
type banco struct {
	sess    *session.Session
	almacen *memory.Store
	fachada *records.Facade
	ctrl    *controller.Controller
	sub     store.Subscription
}

func armarBanco(t *testing.T, rol session.Role, desc controller.Descriptor) *banco {
	t.Helper()
	sess := session.New()
	sess.EstablecerPrincipal("secreto-de-test", "")
	sess.SetRole(rol)

	almacen := memory.New()
	fachada := records.New(almacen, sess, nil)
	ctrl := controller.New(desc, sess, fachada)

	sub := fachada.Subscribe(context.Background(), desc.Collection,
		func(s store.Snapshot) { ctrl.ApplySnapshot(s) }, nil)
	t.Cleanup(sub.Cancel)
	t.Cleanup(func() { _ = almacen.Close() })

	return &banco{sess: sess, almacen: almacen, fachada: fachada, ctrl: ctrl, sub: sub}
}

func (b *banco) crearItem(t *testing.T, name, model, categoria string, qty int, precio string) string {
	t.Helper()
	p, err := decimal.NewFromString(precio)
	require.NoError(t, err)
	id, err := b.almacen.Create(context.Background(), store.Inventory, store.Fields{
		"name": name, "model": model, "category": categoria, "quantity": qty, "price": p,
	})
	require.NoError(t, err)
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta y edición
// ──────────────────────────────────────────────────────────────────────────────

func TestAltaDeItem_AdminGuardaYLaListaSeActualizaOrdenada(t *testing.T) {
	b := armarBanco(t, session.RoleAdmin, controller.DescriptorInventario())
	b.crearItem(t, "Funda rígida", "Moto G84", "Funda", 4, "8.00")

	b.ctrl.StartAdd()
	require.Equal(t, controller.ModeFormulario, b.ctrl.Mode())
	assert.False(t, b.ctrl.Editing())

	b.ctrl.SetDraftField("name", "Mica templada")
	b.ctrl.SetDraftField("model", "iPhone 15 Pro")
	b.ctrl.SetDraftField("category", "Mica")
	b.ctrl.SetDraftField("quantity", 10)
	b.ctrl.SetDraftField("price", decimal.NewFromFloat(5.5))
	b.ctrl.Save(context.Background())

	require.Equal(t, controller.ModeLista, b.ctrl.Mode(), "el alta exitosa regresa a la lista")
	require.NotNil(t, b.ctrl.Aviso())
	assert.Equal(t, controller.NoticeExito, b.ctrl.Aviso().Titulo)

	visibles := b.ctrl.Visible()
	require.Len(t, visibles, 2)
	// orden por nombre con reglas del español: Funda < Mica
	assert.Equal(t, "Funda rígida", store.StringField(visibles[0].Fields, "name"))
	assert.Equal(t, "Mica templada", store.StringField(visibles[1].Fields, "name"))
	assert.False(t, store.CreatedAt(visibles[1].Fields).IsZero(),
		"el timestamp de servidor llega en el snapshot")
}

func TestEdicion_ElBorradorEsCopiaYNoTocaElSnapshot(t *testing.T) {
	b := armarBanco(t, session.RoleAdmin, controller.DescriptorInventario())
	b.crearItem(t, "Mica templada", "iPhone 15", "Mica", 10, "5.50")

	doc := b.ctrl.Visible()[0]
	b.ctrl.StartEdit(doc)
	require.True(t, b.ctrl.Editing())
	b.ctrl.SetDraftField("quantity", 3)

	qty, _ := store.IntField(b.ctrl.Visible()[0].Fields, "quantity")
	assert.Equal(t, 10, qty, "editar el borrador no muta la lista")

	b.ctrl.Save(context.Background())
	require.Equal(t, controller.ModeLista, b.ctrl.Mode())

	tras := b.ctrl.Visible()[0]
	qty, _ = store.IntField(tras.Fields, "quantity")
	assert.Equal(t, 3, qty)
	assert.Equal(t, "iPhone 15", store.StringField(tras.Fields, "model"),
		"los campos no editados sobreviven")
}

func TestCancelarFormulario_DescartaElBorrador(t *testing.T) {
	b := armarBanco(t, session.RoleAdmin, controller.DescriptorInventario())

	b.ctrl.StartAdd()
	b.ctrl.SetDraftField("name", "algo a medias")
	b.ctrl.Cancel()

	assert.Equal(t, controller.ModeLista, b.ctrl.Mode())
	assert.Nil(t, b.ctrl.Draft(), "volver a la lista siempre parte limpio")
	assert.Empty(t, b.ctrl.Visible())
}

func TestGuardarConErroresDeValidacion_PermaneceEnElFormulario(t *testing.T) {
	b := armarBanco(t, session.RoleAdmin, controller.DescriptorInventario())

	b.ctrl.StartAdd()
	b.ctrl.SetDraftField("name", "")
	b.ctrl.SetDraftField("quantity", -1)
	b.ctrl.Save(context.Background())

	assert.Equal(t, controller.ModeFormulario, b.ctrl.Mode(),
		"con errores de validación no se abandona el formulario")
	assert.NotEmpty(t, b.ctrl.ErrorCampo("name"))
	assert.NotEmpty(t, b.ctrl.ErrorCampo("quantity"))
	assert.Empty(t, b.ctrl.Visible(), "nada llegó al almacén")

	// corregir un campo limpia su error inline
	b.ctrl.SetDraftField("name", "Mica")
	assert.Empty(t, b.ctrl.ErrorCampo("name"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Política de roles
// ──────────────────────────────────────────────────────────────────────────────

func TestUserNoPuedeMutarInventario(t *testing.T) {
	b := armarBanco(t, session.RoleUser, controller.DescriptorInventario())
	b.crearItem(t, "Mica templada", "iPhone 15", "Mica", 10, "5.50")

	b.ctrl.StartAdd()
	assert.Equal(t, controller.ModeLista, b.ctrl.Mode(), "la denegación no cambia de vista")
	require.NotNil(t, b.ctrl.Aviso())
	assert.Equal(t, controller.NoticeAccesoDenegado, b.ctrl.Aviso().Titulo)

	b.ctrl.ClearNotice()
	b.ctrl.RequestDelete(b.ctrl.Visible()[0])
	assert.Equal(t, controller.ModeLista, b.ctrl.Mode())
	assert.Equal(t, controller.NoticeAccesoDenegado, b.ctrl.Aviso().Titulo)
	assert.Len(t, b.ctrl.Visible(), 1, "nada se borró")
}

func TestUserSiPuedeGestionarTickets(t *testing.T) {
	b := armarBanco(t, session.RoleUser, controller.DescriptorTickets())

	b.ctrl.StartAdd()
	require.Equal(t, controller.ModeFormulario, b.ctrl.Mode())
	assert.Equal(t, "PENDIENTE", store.StringField(b.ctrl.Draft(), "estado"),
		"el alta de ticket parte en PENDIENTE")

	b.ctrl.SetDraftField("cliente", "María")
	b.ctrl.SetDraftField("equipo", "Samsung A54")
	b.ctrl.Save(context.Background())

	require.Equal(t, controller.ModeLista, b.ctrl.Mode())
	require.Len(t, b.ctrl.Visible(), 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Borrado confirmado
// ──────────────────────────────────────────────────────────────────────────────

func TestBorrado_SiempreMediaConfirmacion(t *testing.T) {
	b := armarBanco(t, session.RoleAdmin, controller.DescriptorInventario())
	b.crearItem(t, "Mica templada", "iPhone 15", "Mica", 10, "5.50")

	doc := b.ctrl.Visible()[0]
	b.ctrl.RequestDelete(doc)
	require.Equal(t, controller.ModeConfirmarBorrado, b.ctrl.Mode())
	assert.Equal(t, doc.ID, b.ctrl.Objetivo().ID)
	assert.Len(t, b.ctrl.Visible(), 1, "pedir el borrado aún no borra")

	b.ctrl.CancelDelete()
	assert.Equal(t, controller.ModeLista, b.ctrl.Mode())
	assert.Len(t, b.ctrl.Visible(), 1, "cancelar deja el registro intacto")

	b.ctrl.RequestDelete(doc)
	b.ctrl.ConfirmDelete(context.Background())
	assert.Equal(t, controller.ModeLista, b.ctrl.Mode())
	assert.Empty(t, b.ctrl.Visible(), "el borrado confirmado es definitivo")
	require.NotNil(t, b.ctrl.Aviso())
	assert.Equal(t, controller.NoticeEliminado, b.ctrl.Aviso().Titulo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Filtros y orden
// ──────────────────────────────────────────────────────────────────────────────

func TestFiltroDeCategoriaYBusquedaCombinados(t *testing.T) {
	b := armarBanco(t, session.RoleAdmin, controller.DescriptorInventario())
	b.crearItem(t, "Mica templada", "iPhone 15 Pro", "Mica", 10, "5.50")
	b.crearItem(t, "Mica hidrogel", "Samsung A54", "Mica", 7, "6.00")
	b.crearItem(t, "Funda rígida", "iPhone 15 Pro", "Funda", 4, "8.00")

	b.ctrl.SetCategoryFilter("mica")
	require.Len(t, b.ctrl.Visible(), 2, "el filtro de categoría descarta las fundas")

	b.ctrl.SetSearch("15")
	visibles := b.ctrl.Visible()
	require.Len(t, visibles, 1, "la búsqueda acota dentro de la categoría")
	assert.Equal(t, "Mica templada", store.StringField(visibles[0].Fields, "name"))

	b.ctrl.SetSearch("")
	b.ctrl.SetCategoryFilter("")
	assert.Len(t, b.ctrl.Visible(), 3)
}

func TestTickets_OrdenSoloPorFechaNoPorLlegada(t *testing.T) {
	sess := session.New()
	sess.EstablecerPrincipal("secreto-de-test", "")
	sess.SetRole(session.RoleAdmin)
	ctrl := controller.New(controller.DescriptorTickets(), sess, records.New(nil, sess, nil))

	viejo := store.Document{ID: "t1", Fields: store.Fields{
		"cliente": "Ana", "createdAt": time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}}
	nuevo := store.Document{ID: "t2", Fields: store.Fields{
		"cliente": "Luis", "createdAt": time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}}
	sinFecha := store.Document{ID: "t3", Fields: store.Fields{"cliente": "Eva"}}

	// el snapshot llega con el más nuevo al final y un documento sin fecha en medio
	ctrl.ApplySnapshot(store.Snapshot{
		Collection: store.Tickets,
		Documents:  []store.Document{viejo, sinFecha, nuevo},
	})

	visibles := ctrl.Visible()
	require.Len(t, visibles, 3)
	assert.Equal(t, "t2", visibles[0].ID, "el más reciente va primero")
	assert.Equal(t, "t1", visibles[1].ID)
	assert.Equal(t, "t3", visibles[2].ID, "sin fecha ordena como el más antiguo")

	// un snapshot posterior reemplaza por completo al anterior
	ctrl.ApplySnapshot(store.Snapshot{
		Collection: store.Tickets,
		Documents:  []store.Document{nuevo},
	})
	assert.Len(t, ctrl.Visible(), 1)
}

func TestOrdenarPorFechaDesc_SinFechaAlFinal(t *testing.T) {
	docs := []store.Document{
		{ID: "v1", Fields: store.Fields{"createdAt": time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}},
		{ID: "v2", Fields: store.Fields{}},
		{ID: "v3", Fields: store.Fields{"createdAt": time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}},
	}

	controller.OrdenarPorFechaDesc(docs)

	assert.Equal(t, "v3", docs[0].ID)
	assert.Equal(t, "v1", docs[1].ID)
	assert.Equal(t, "v2", docs[2].ID, "sin fecha ordena como el más viejo")
}

// ──────────────────────────────────────────────────────────────────────────────
// Degradación sin backend
// ──────────────────────────────────────────────────────────────────────────────

func TestSinBackend_GuardarEsNoOpYNoFalla(t *testing.T) {
	sess := session.New()
	sess.EstablecerPrincipal("secreto-de-test", "")
	sess.SetRole(session.RoleAdmin)
	ctrl := controller.New(controller.DescriptorTickets(), sess, records.New(nil, sess, nil))

	ctrl.StartAdd()
	ctrl.SetDraftField("cliente", "María")
	ctrl.SetDraftField("equipo", "Samsung A54")
	ctrl.Save(context.Background())

	assert.Equal(t, controller.ModeLista, ctrl.Mode(),
		"sin backend el guardado degrada en silencio, no truena")
	assert.Empty(t, ctrl.Visible())
}
