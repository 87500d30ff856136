package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/shopspring/decimal"

	"github.com/Ivan0402201/Taller/internal/application/controller"
	"github.com/Ivan0402201/Taller/internal/domain/store"
)

// campoForm describe un campo editable del formulario de una pantalla.
type campoForm struct {
	clave  string
	titulo string
	ayuda  string
}

var camposInventario = []campoForm{
	{clave: "name", titulo: "Nombre"},
	{clave: "model", titulo: "Modelo", ayuda: "ej. iPhone 15 Pro"},
	{clave: "category", titulo: "Categoría", ayuda: "Mica, Funda, Accesorio o Herramienta"},
	{clave: "quantity", titulo: "Cantidad"},
	{clave: "price", titulo: "Precio"},
}

var camposTicket = []campoForm{
	{clave: "cliente", titulo: "Cliente"},
	{clave: "equipo", titulo: "Equipo", ayuda: "ej. Samsung A54, pantalla rota"},
	{clave: "estado", titulo: "Estado", ayuda: "PENDIENTE, EN REPARACION, LISTO, ENTREGADO"},
}

// construirInputs crea los textinputs del formulario precargados desde el
// borrador del controlador, con el primero enfocado.
func construirInputs(campos []campoForm, borrador store.Fields) []textinput.Model {
	inputs := make([]textinput.Model, len(campos))
	for i, campo := range campos {
		in := textinput.New()
		in.Placeholder = campo.ayuda
		in.CharLimit = 120
		in.SetValue(formatearValor(borrador[campo.clave]))
		if i == 0 {
			in.Focus()
		}
		inputs[i] = in
	}
	return inputs
}

// volcarInputs escribe los valores de los inputs al borrador del controlador,
// convirtiendo al tipo que espera el esquema. Un número ilegible se vuelca
// como string para que la validación lo marque en su campo en lugar de
// perderse en silencio.
func volcarInputs(ctrl *controller.Controller, campos []campoForm, inputs []textinput.Model) {
	for i, campo := range campos {
		texto := strings.TrimSpace(inputs[i].Value())
		switch campo.clave {
		case "quantity":
			if n, err := strconv.Atoi(texto); err == nil {
				ctrl.SetDraftField(campo.clave, n)
				continue
			}
			ctrl.SetDraftField(campo.clave, texto)
		case "price":
			if d, err := decimal.NewFromString(texto); err == nil {
				ctrl.SetDraftField(campo.clave, d)
				continue
			}
			ctrl.SetDraftField(campo.clave, texto)
		default:
			ctrl.SetDraftField(campo.clave, texto)
		}
	}
}

// formatearValor presenta un valor de campo como texto editable.
func formatearValor(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case decimal.Decimal:
		return x.String()
	case time.Time:
		return x.Local().Format("2006-01-02 15:04")
	default:
		return fmt.Sprintf("%v", x)
	}
}
