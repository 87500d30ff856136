package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ivan0402201/Taller/internal/domain/store"
)

// Categoria clasifica un item del inventario del taller.
type Categoria string

const (
	CategoriaMica        Categoria = "Mica"
	CategoriaFunda       Categoria = "Funda"
	CategoriaAccesorio   Categoria = "Accesorio"
	CategoriaHerramienta Categoria = "Herramienta"
)

// Categorias lista las categorías válidas en orden de pestañas.
var Categorias = []Categoria{CategoriaMica, CategoriaFunda, CategoriaAccesorio, CategoriaHerramienta}

// Valida indica si la categoría es una de las conocidas.
func (c Categoria) Valida() bool {
	switch c {
	case CategoriaMica, CategoriaFunda, CategoriaAccesorio, CategoriaHerramienta:
		return true
	}
	return false
}

// Item es un producto del inventario compartido del taller.
// El identificador lo asigna el store al crear; es inmutable después.
type Item struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Model     string          `json:"model"` // descriptor libre de compatibilidad (ej. "iPhone 15 Pro")
	Category  Categoria       `json:"category"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ItemFromDocument decodifica un documento del store a Item.
// Cantidad y precio ausentes o malformados quedan en cero, igual que el
// saneo que hace la vista al recibir snapshots.
func ItemFromDocument(d store.Document) Item {
	qty, _ := store.IntField(d.Fields, "quantity")
	price, _ := store.DecimalField(d.Fields, "price")
	return Item{
		ID:        d.ID,
		Name:      store.StringField(d.Fields, "name"),
		Model:     store.StringField(d.Fields, "model"),
		Category:  Categoria(store.StringField(d.Fields, "category")),
		Quantity:  qty,
		Price:     price,
		CreatedAt: store.CreatedAt(d.Fields),
	}
}

// Fields serializa el item a campos de documento (sin id ni createdAt,
// que administra el store).
func (i Item) Fields() store.Fields {
	return store.Fields{
		"name":     i.Name,
		"model":    i.Model,
		"category": string(i.Category),
		"quantity": i.Quantity,
		"price":    i.Price,
	}
}
