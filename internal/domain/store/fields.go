package store

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Coerción de campos de documento. Según el backend, un mismo campo puede
// llegar tipado (time.Time, decimal.Decimal, int) o como el resultado de
// decodificar JSON (string RFC3339, float64, json.Number); estos helpers
// normalizan ambas representaciones.

// StringField devuelve el campo como string ("" si falta o no es string).
func StringField(f Fields, key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

// IntField devuelve el campo como entero.
func IntField(f Fields, key string) (int, bool) {
	switch v := f[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// DecimalField devuelve el campo como decimal.
func DecimalField(f Fields, key string) (decimal.Decimal, bool) {
	switch v := f[key].(type) {
	case decimal.Decimal:
		return v, true
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

// TimeField devuelve el campo como instante. Un documento sin timestamp
// devuelve el cero de time.Time (ordena como el más antiguo).
func TimeField(f Fields, key string) time.Time {
	switch v := f[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// CreatedAt devuelve el timestamp de creación asignado por el servidor.
func CreatedAt(f Fields) time.Time {
	return TimeField(f, "createdAt")
}
