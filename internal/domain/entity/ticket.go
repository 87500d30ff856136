package entity

import (
	"time"

	"github.com/Ivan0402201/Taller/internal/domain/store"
)

// EstadoPendiente es el estado inicial de todo ticket. El estado es un
// string abierto (el flujo del taller define otros valores libremente).
const EstadoPendiente = "PENDIENTE"

// Ticket es una orden de reparación: el cliente, su equipo y el estado del
// trabajo. La fecha de ingreso la asigna el servidor al crear.
type Ticket struct {
	ID        string    `json:"id"`
	Cliente   string    `json:"cliente"`
	Equipo    string    `json:"equipo"`
	Estado    string    `json:"estado"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketFromDocument decodifica un documento del store a Ticket.
// Estado vacío se muestra como PENDIENTE.
func TicketFromDocument(d store.Document) Ticket {
	estado := store.StringField(d.Fields, "estado")
	if estado == "" {
		estado = EstadoPendiente
	}
	return Ticket{
		ID:        d.ID,
		Cliente:   store.StringField(d.Fields, "cliente"),
		Equipo:    store.StringField(d.Fields, "equipo"),
		Estado:    estado,
		CreatedAt: store.CreatedAt(d.Fields),
	}
}

// Fields serializa el ticket a campos de documento.
func (t Ticket) Fields() store.Fields {
	return store.Fields{
		"cliente": t.Cliente,
		"equipo":  t.Equipo,
		"estado":  t.Estado,
	}
}
