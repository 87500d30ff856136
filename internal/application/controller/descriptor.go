package controller

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Ivan0402201/Taller/internal/domain/entity"
	"github.com/Ivan0402201/Taller/internal/domain/store"
)

// Descriptor parametriza el controlador genérico por tipo de entidad: qué
// colección respalda la pantalla, sobre qué campos busca el usuario, qué
// campo filtra la pestaña de categoría, cómo se valida un borrador y cómo
// se ordena la lista.
type Descriptor struct {
	Collection     store.Collection
	CamposBusqueda []string // búsqueda por substring case-insensitive
	CampoCategoria string   // vacío = la pantalla no filtra por categoría
	Validar        func(store.Fields) entity.ValidationResult
	Defaults       func() store.Fields
	Ordenar        func([]store.Document)
}

// coladorEs ordena con reglas del español, insensible a mayúsculas y
// acentos (equivalente práctico de localeCompare).
var coladorEs = collate.New(language.Spanish, collate.Loose)

// DescriptorInventario describe la pantalla de inventario: busca por nombre
// y modelo, filtra por categoría y ordena por nombre ascendente con
// comparación locale-aware.
func DescriptorInventario() Descriptor {
	return Descriptor{
		Collection:     store.Inventory,
		CamposBusqueda: []string{"name", "model"},
		CampoCategoria: "category",
		Validar:        entity.ValidarItem,
		Defaults: func() store.Fields {
			return store.Fields{
				"name":     "",
				"model":    "",
				"category": string(entity.CategoriaAccesorio),
				"quantity": 0,
				"price":    0,
			}
		},
		Ordenar: func(docs []store.Document) {
			sort.SliceStable(docs, func(i, j int) bool {
				return coladorEs.CompareString(
					store.StringField(docs[i].Fields, "name"),
					store.StringField(docs[j].Fields, "name"),
				) < 0
			})
		},
	}
}

// DescriptorTickets describe la pantalla de tickets: busca por cliente,
// equipo e id, sin filtro de categoría, ordenada por fecha de ingreso
// descendente. El orden final depende solo del timestamp de cada ticket,
// nunca del orden de llegada de los snapshots; un ticket sin fecha ordena
// como el más antiguo.
func DescriptorTickets() Descriptor {
	return Descriptor{
		Collection:     store.Tickets,
		CamposBusqueda: []string{"cliente", "equipo", "id"},
		Validar:        entity.ValidarTicket,
		Defaults: func() store.Fields {
			return store.Fields{
				"cliente": "",
				"equipo":  "",
				"estado":  entity.EstadoPendiente,
			}
		},
		Ordenar: OrdenarPorFechaDesc,
	}
}

// OrdenarPorFechaDesc ordena documentos por su metadato createdAt, del más
// reciente al más antiguo. Un documento sin fecha ordena como el más viejo.
// Lo comparten la lista de tickets y la de ventas.
func OrdenarPorFechaDesc(docs []store.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return store.CreatedAt(docs[i].Fields).After(store.CreatedAt(docs[j].Fields))
	})
}

// contieneInsensible indica si s contiene sub sin distinguir mayúsculas.
func contieneInsensible(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
