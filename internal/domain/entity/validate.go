package entity

import (
	"github.com/shopspring/decimal"

	"github.com/Ivan0402201/Taller/internal/domain/store"
)

// Violacion es una violación de esquema a nivel de campo, apta para
// mostrarse inline junto al campo del formulario.
type Violacion struct {
	Campo   string
	Mensaje string
}

// ValidationResult acumula las violaciones de un candidato. Vacío = Ok.
type ValidationResult struct {
	Violaciones []Violacion
}

// Ok indica que el candidato cumple el esquema.
func (r ValidationResult) Ok() bool {
	return len(r.Violaciones) == 0
}

func (r *ValidationResult) add(campo, mensaje string) {
	r.Violaciones = append(r.Violaciones, Violacion{Campo: campo, Mensaje: mensaje})
}

// PorCampo indexa las violaciones por campo para el render del formulario.
func (r ValidationResult) PorCampo() map[string]string {
	if len(r.Violaciones) == 0 {
		return nil
	}
	out := make(map[string]string, len(r.Violaciones))
	for _, v := range r.Violaciones {
		if _, ya := out[v.Campo]; !ya {
			out[v.Campo] = v.Mensaje
		}
	}
	return out
}

// ValidarItem valida un candidato de item de inventario: nombre y modelo no
// vacíos, categoría conocida, cantidad >= 0, precio > 0. Puro, sin I/O.
func ValidarItem(f store.Fields) ValidationResult {
	var r ValidationResult
	if store.StringField(f, "name") == "" {
		r.add("name", "el nombre es obligatorio")
	}
	if store.StringField(f, "model") == "" {
		r.add("model", "el modelo es obligatorio")
	}
	if !Categoria(store.StringField(f, "category")).Valida() {
		r.add("category", "categoría inválida")
	}
	qty, ok := store.IntField(f, "quantity")
	if !ok || qty < 0 {
		r.add("quantity", "la cantidad debe ser un entero >= 0")
	}
	precio, ok := store.DecimalField(f, "price")
	if !ok || !precio.GreaterThan(decimal.Zero) {
		r.add("price", "el precio debe ser mayor que 0")
	}
	return r
}

// ValidarItemParcial valida un merge parcial de item: cada regla aplica solo
// si el campo viene en el payload. Un parcial válido nunca puede dejar al
// item persistido fuera de su esquema.
func ValidarItemParcial(f store.Fields) ValidationResult {
	var r ValidationResult
	if _, ya := f["name"]; ya && store.StringField(f, "name") == "" {
		r.add("name", "el nombre es obligatorio")
	}
	if _, ya := f["model"]; ya && store.StringField(f, "model") == "" {
		r.add("model", "el modelo es obligatorio")
	}
	if _, ya := f["category"]; ya && !Categoria(store.StringField(f, "category")).Valida() {
		r.add("category", "categoría inválida")
	}
	if _, ya := f["quantity"]; ya {
		if qty, ok := store.IntField(f, "quantity"); !ok || qty < 0 {
			r.add("quantity", "la cantidad debe ser un entero >= 0")
		}
	}
	if _, ya := f["price"]; ya {
		if precio, ok := store.DecimalField(f, "price"); !ok || !precio.GreaterThan(decimal.Zero) {
			r.add("price", "el precio debe ser mayor que 0")
		}
	}
	return r
}

// ValidarTicket valida un candidato de ticket: cliente y equipo no vacíos.
// La fuente original guardaba sin validar; aquí el invariante del modelo de
// datos se aplica antes de persistir.
func ValidarTicket(f store.Fields) ValidationResult {
	var r ValidationResult
	if store.StringField(f, "cliente") == "" {
		r.add("cliente", "el cliente es obligatorio")
	}
	if store.StringField(f, "equipo") == "" {
		r.add("equipo", "el equipo es obligatorio")
	}
	return r
}

// ValidarTicketParcial valida un merge parcial de ticket.
func ValidarTicketParcial(f store.Fields) ValidationResult {
	var r ValidationResult
	if _, ya := f["cliente"]; ya && store.StringField(f, "cliente") == "" {
		r.add("cliente", "el cliente es obligatorio")
	}
	if _, ya := f["equipo"]; ya && store.StringField(f, "equipo") == "" {
		r.add("equipo", "el equipo es obligatorio")
	}
	return r
}

// ValidarVenta valida un candidato de venta: total > 0 y al menos una línea.
func ValidarVenta(f store.Fields) ValidationResult {
	var r ValidationResult
	total, ok := store.DecimalField(f, "total")
	if !ok || !total.GreaterThan(decimal.Zero) {
		r.add("total", "el total debe ser mayor que 0")
	}
	if lineas, ok := f["lineas"].([]any); !ok || len(lineas) == 0 {
		r.add("lineas", "la venta necesita al menos una línea")
	}
	return r
}

// ValidarVentaParcial valida un merge parcial de venta.
func ValidarVentaParcial(f store.Fields) ValidationResult {
	var r ValidationResult
	if _, ya := f["total"]; ya {
		if total, ok := store.DecimalField(f, "total"); !ok || !total.GreaterThan(decimal.Zero) {
			r.add("total", "el total debe ser mayor que 0")
		}
	}
	if _, ya := f["lineas"]; ya {
		if lineas, ok := f["lineas"].([]any); !ok || len(lineas) == 0 {
			r.add("lineas", "la venta necesita al menos una línea")
		}
	}
	return r
}
