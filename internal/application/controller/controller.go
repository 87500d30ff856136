// Package controller implementa la máquina de estados de las pantallas CRUD:
// lista, formulario y confirmación de borrado. Es lógica pura de presentación
// sin I/O propio; las mutaciones pasan por la fachada de registros y los
// datos llegan como snapshots completos vía ApplySnapshot.
package controller

import (
	"context"
	"fmt"

	"github.com/Ivan0402201/Taller/internal/application/policy"
	"github.com/Ivan0402201/Taller/internal/application/records"
	"github.com/Ivan0402201/Taller/internal/application/session"
	"github.com/Ivan0402201/Taller/internal/domain/store"
)

// Mode es el estado de vista de la pantalla.
type Mode int

const (
	ModeLista Mode = iota
	ModeFormulario
	ModeConfirmarBorrado
)

// Controller gobierna una pantalla CRUD parametrizada por su Descriptor.
// No es seguro para uso concurrente: está pensado para el hilo único del
// event loop de la UI.
type Controller struct {
	desc    Descriptor
	sess    *session.Session
	fachada *records.Facade

	mode     Mode
	snapshot []store.Document

	// estado del formulario
	draft        store.Fields
	draftID      string // vacío = alta, no vacío = edición
	erroresCampo map[string]string

	// estado de la confirmación de borrado
	objetivo store.Document

	// filtros de la lista
	busqueda        string
	filtroCategoria string

	aviso *Notice
}

// New construye el controlador en modo lista, sin datos ni filtros.
func New(desc Descriptor, sess *session.Session, fachada *records.Facade) *Controller {
	return &Controller{desc: desc, sess: sess, fachada: fachada}
}

// Mode devuelve el estado de vista actual.
func (c *Controller) Mode() Mode { return c.mode }

// Editing indica si el formulario abierto edita un documento existente.
func (c *Controller) Editing() bool { return c.draftID != "" }

// DraftID devuelve el id del documento en edición ("" en un alta).
func (c *Controller) DraftID() string { return c.draftID }

// Draft devuelve el borrador del formulario. El mapa es el estado vivo del
// controlador; la UI lo lee para pintar los campos.
func (c *Controller) Draft() store.Fields { return c.draft }

// ErrorCampo devuelve el mensaje de validación del campo, o "" si no hay.
func (c *Controller) ErrorCampo(campo string) string { return c.erroresCampo[campo] }

// Objetivo devuelve el documento pendiente de confirmación de borrado.
func (c *Controller) Objetivo() store.Document { return c.objetivo }

// Busqueda devuelve el término de búsqueda activo.
func (c *Controller) Busqueda() string { return c.busqueda }

// FiltroCategoria devuelve el filtro de categoría activo ("" = sin filtro).
func (c *Controller) FiltroCategoria() string { return c.filtroCategoria }

// Aviso devuelve el aviso vigente o nil. La UI lo descarta con ClearNotice
// cuando vence su TTL o el usuario lo cierra.
func (c *Controller) Aviso() *Notice { return c.aviso }

// ClearNotice descarta el aviso vigente.
func (c *Controller) ClearNotice() { c.aviso = nil }

func (c *Controller) notificar(titulo, mensaje string) {
	c.aviso = &Notice{Titulo: titulo, Mensaje: mensaje}
}

// puedeMutar consulta la política de rol y, si no procede, fija el aviso de
// acceso denegado. Toda acción mutante pasa por aquí antes de tocar estado.
func (c *Controller) puedeMutar() bool {
	if policy.CanMutate(c.sess.Role(), c.desc.Collection) {
		return true
	}
	c.notificar(NoticeAccesoDenegado, "Tu rol no permite esta operación.")
	return false
}

// volverALista regresa a la lista descartando todo estado transitorio:
// borrador, errores de campo y objetivo de borrado. Entrar a la lista
// siempre parte limpio.
func (c *Controller) volverALista() {
	c.mode = ModeLista
	c.draft = nil
	c.draftID = ""
	c.erroresCampo = nil
	c.objetivo = store.Document{}
}

// StartAdd abre el formulario de alta con los valores por defecto de la
// entidad. Requiere permiso de mutación.
func (c *Controller) StartAdd() {
	if !c.puedeMutar() {
		return
	}
	c.mode = ModeFormulario
	c.draftID = ""
	c.erroresCampo = nil
	if c.desc.Defaults != nil {
		c.draft = c.desc.Defaults()
	} else {
		c.draft = store.Fields{}
	}
}

// StartEdit abre el formulario precargado con el documento dado. El borrador
// es una copia: editar no toca el snapshot.
func (c *Controller) StartEdit(doc store.Document) {
	if !c.puedeMutar() {
		return
	}
	c.mode = ModeFormulario
	c.draftID = doc.ID
	c.erroresCampo = nil
	c.draft = doc.Fields.Clone()
}

// SetDraftField escribe un campo del borrador y limpia su error de
// validación previo, si lo había.
func (c *Controller) SetDraftField(campo string, valor any) {
	if c.mode != ModeFormulario {
		return
	}
	if c.draft == nil {
		c.draft = store.Fields{}
	}
	c.draft[campo] = valor
	delete(c.erroresCampo, campo)
}

// Cancel descarta el formulario o la confirmación y vuelve a la lista.
func (c *Controller) Cancel() {
	c.volverALista()
}

// Save valida el borrador y lo persiste. Con errores de validación la
// pantalla permanece en el formulario mostrando el error por campo; un
// error del store también deja el formulario abierto para no perder lo
// escrito. Solo el éxito regresa a la lista.
func (c *Controller) Save(ctx context.Context) {
	if c.mode != ModeFormulario {
		return
	}
	if !c.puedeMutar() {
		return
	}
	if c.desc.Validar != nil {
		if res := c.desc.Validar(c.draft); !res.Ok() {
			c.erroresCampo = res.PorCampo()
			c.notificar(NoticeError, "Revisa los campos marcados.")
			return
		}
	}
	var err error
	if c.draftID == "" {
		_, err = c.fachada.Create(ctx, c.desc.Collection, c.draft)
	} else {
		err = c.fachada.Update(ctx, c.desc.Collection, c.draftID, c.draft)
	}
	if err != nil {
		c.notificar(NoticeErrorSistema, fmt.Sprintf("No se pudo guardar: %v", err))
		return
	}
	c.volverALista()
	c.notificar(NoticeExito, "Registro guardado correctamente.")
}

// RequestDelete pasa a la confirmación de borrado del documento dado.
// El borrado nunca es directo: siempre media una confirmación explícita.
func (c *Controller) RequestDelete(doc store.Document) {
	if !c.puedeMutar() {
		return
	}
	c.mode = ModeConfirmarBorrado
	c.objetivo = doc
}

// CancelDelete descarta la confirmación sin tocar el documento.
func (c *Controller) CancelDelete() {
	c.volverALista()
}

// ConfirmDelete ejecuta el borrado confirmado. Es irreversible: no hay
// papelera ni deshacer.
func (c *Controller) ConfirmDelete(ctx context.Context) {
	if c.mode != ModeConfirmarBorrado {
		return
	}
	if !c.puedeMutar() {
		c.volverALista()
		return
	}
	err := c.fachada.Delete(ctx, c.desc.Collection, c.objetivo.ID)
	c.volverALista()
	if err != nil {
		c.notificar(NoticeErrorSistema, fmt.Sprintf("No se pudo eliminar: %v", err))
		return
	}
	c.notificar(NoticeEliminado, "Registro eliminado.")
}

// SetSearch fija el término de búsqueda de la lista.
func (c *Controller) SetSearch(q string) { c.busqueda = q }

// SetCategoryFilter fija el filtro de categoría ("" lo quita). Solo tiene
// efecto en pantallas cuyo descriptor declara campo de categoría.
func (c *Controller) SetCategoryFilter(cat string) { c.filtroCategoria = cat }

// ApplySnapshot reemplaza los datos de la pantalla con el snapshot recibido.
// Cada entrega sustituye por completo a la anterior; no hay merges
// incrementales, así que snapshots fuera de orden no corrompen la lista:
// el orden visible lo decide únicamente Ordenar sobre el contenido.
func (c *Controller) ApplySnapshot(s store.Snapshot) {
	docs := make([]store.Document, len(s.Documents))
	copy(docs, s.Documents)
	if c.desc.Ordenar != nil {
		c.desc.Ordenar(docs)
	}
	c.snapshot = docs
}

// Snapshot devuelve los documentos ordenados sin filtrar.
func (c *Controller) Snapshot() []store.Document { return c.snapshot }

// Visible devuelve los documentos que pasan el filtro de categoría y la
// búsqueda, en el orden del snapshot. La búsqueda es por substring
// case-insensitive sobre los campos declarados en el descriptor.
func (c *Controller) Visible() []store.Document {
	out := make([]store.Document, 0, len(c.snapshot))
	for _, doc := range c.snapshot {
		if c.filtroCategoria != "" && c.desc.CampoCategoria != "" {
			if !contieneInsensible(store.StringField(doc.Fields, c.desc.CampoCategoria), c.filtroCategoria) {
				continue
			}
		}
		if c.busqueda != "" && !c.coincideBusqueda(doc) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

func (c *Controller) coincideBusqueda(doc store.Document) bool {
	for _, campo := range c.desc.CamposBusqueda {
		valor := store.StringField(doc.Fields, campo)
		if campo == "id" {
			valor = doc.ID
		}
		if contieneInsensible(valor, c.busqueda) {
			return true
		}
	}
	return false
}
