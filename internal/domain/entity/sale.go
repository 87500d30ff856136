package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ivan0402201/Taller/internal/domain/store"
)

// SaleLine es una línea de venta: qué item se consumió, cuántas unidades y
// a qué precio unitario al momento de la venta.
type SaleLine struct {
	ItemID   string          `json:"itemId"`
	Cantidad int             `json:"cantidad"`
	Precio   decimal.Decimal `json:"precio"`
}

// Sale es el registro de una transacción de punto de venta. Es write-only:
// se crea una vez y nunca se muta ni borra. El decremento de stock asociado
// queda fuera de este registro (decisión de producto pendiente).
type Sale struct {
	ID        string          `json:"id"`
	Lineas    []SaleLine      `json:"lineas"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SaleFromDocument decodifica un documento del store a Sale. Las líneas
// malformadas se omiten.
func SaleFromDocument(d store.Document) Sale {
	total, _ := store.DecimalField(d.Fields, "total")
	s := Sale{
		ID:        d.ID,
		Total:     total,
		CreatedAt: store.CreatedAt(d.Fields),
	}
	lineas, _ := d.Fields["lineas"].([]any)
	for _, cruda := range lineas {
		campos, ok := cruda.(map[string]any)
		if !ok {
			continue
		}
		f := store.Fields(campos)
		cantidad, _ := store.IntField(f, "cantidad")
		precio, _ := store.DecimalField(f, "precio")
		s.Lineas = append(s.Lineas, SaleLine{
			ItemID:   store.StringField(f, "itemId"),
			Cantidad: cantidad,
			Precio:   precio,
		})
	}
	return s
}

// Fields serializa la venta a campos de documento. Las líneas viajan como
// payload opaco para el store.
func (s Sale) Fields() store.Fields {
	lineas := make([]any, 0, len(s.Lineas))
	for _, l := range s.Lineas {
		lineas = append(lineas, map[string]any{
			"itemId":   l.ItemID,
			"cantidad": l.Cantidad,
			"precio":   l.Precio,
		})
	}
	return store.Fields{
		"lineas": lineas,
		"total":  s.Total,
	}
}
