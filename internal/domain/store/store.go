// Package store define el puerto del almacén de documentos: el límite que
// aísla a los controladores de UI de cualquier backend concreto (DIP, igual
// que los puertos de repositorio, pero con modelo documento + snapshot).
//
// El modelo de propagación es snapshot-replace: cada suscripción recibe el
// conjunto completo de la colección inmediatamente y de nuevo en cada
// mutación local o remota, nunca diffs incrementales.
package store

import "context"

// Collection identifica una de las colecciones del dataset compartido.
type Collection string

const (
	Inventory Collection = "inventory"
	Tickets   Collection = "tickets"
	Sales     Collection = "sales"
)

// Collections lista las colecciones conocidas, en orden estable.
var Collections = []Collection{Inventory, Tickets, Sales}

// Valid indica si c es una colección conocida.
func (c Collection) Valid() bool {
	switch c {
	case Inventory, Tickets, Sales:
		return true
	}
	return false
}

// Fields son los campos de un documento (claves JSON). El campo "createdAt"
// lo asigna siempre el backend en Create; el campo "id" nunca viaja dentro
// de Fields (vive en Document.ID).
type Fields map[string]any

// Clone copia superficial de los campos (los valores se comparten).
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Document es un registro de una colección: identificador + campos.
type Document struct {
	ID     string
	Fields Fields
}

// Snapshot es el conjunto completo y actual de una colección.
type Snapshot struct {
	Collection Collection
	Documents  []Document
}

// Subscription es el handle de una consulta en vivo. Cancel desregistra el
// listener; debe llamarse al desmontar la pantalla o al cambiar de sesión
// para no entregar datos de una sesión vieja a una vista nueva.
type Subscription interface {
	Cancel()
}

// Store es el puerto de persistencia del dataset compartido.
//
// Subscribe invoca onChange(snapshot) una vez de inmediato con el estado
// actual y otra vez tras cada mutación posterior, durante la vida de la
// suscripción. Los snapshots de una colección llegan en el orden en que el
// backend los emite; no hay orden garantizado entre colecciones.
//
// Create asigna id y timestamp de servidor. Update hace merge solo de los
// campos provistos (last-write-wins, sin detección de conflictos). Delete
// es borrado duro e irreversible.
type Store interface {
	Subscribe(ctx context.Context, c Collection, onChange func(Snapshot), onError func(error)) (Subscription, error)
	Create(ctx context.Context, c Collection, fields Fields) (string, error)
	Update(ctx context.Context, c Collection, id string, fields Fields) error
	Delete(ctx context.Context, c Collection, id string) error
	Close() error
}

// CancelFunc adapta una función a Subscription.
type CancelFunc func()

// Cancel implementa Subscription.
func (f CancelFunc) Cancel() {
	if f != nil {
		f()
	}
}
