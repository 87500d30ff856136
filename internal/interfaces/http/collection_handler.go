package http

import (
	"context"
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/Ivan0402201/Taller/internal/application/dto"
	"github.com/Ivan0402201/Taller/internal/application/records"
	"github.com/Ivan0402201/Taller/internal/domain"
	"github.com/Ivan0402201/Taller/internal/domain/entity"
	"github.com/Ivan0402201/Taller/internal/domain/store"
)

// validadores esquema por colección, aplicado en altas.
var validadores = map[store.Collection]func(store.Fields) entity.ValidationResult{
	store.Inventory: entity.ValidarItem,
	store.Tickets:   entity.ValidarTicket,
	store.Sales:     entity.ValidarVenta,
}

// validadoresParciales esquema por colección para merges parciales: solo se
// evalúan los campos presentes en el payload, de modo que un PATCH jamás
// pueda dejar un documento fuera de su esquema.
var validadoresParciales = map[store.Collection]func(store.Fields) entity.ValidationResult{
	store.Inventory: entity.ValidarItemParcial,
	store.Tickets:   entity.ValidarTicketParcial,
	store.Sales:     entity.ValidarVentaParcial,
}

// CollectionHandler expone el CRUD del dataset compartido. La pasarela NO
// aplica la política de roles: esa decisión vive en la interfaz de usuario
// y es una limitación conocida, no una omisión.
type CollectionHandler struct {
	fachada *records.Facade
}

// NewCollectionHandler construye el handler de colecciones.
func NewCollectionHandler(fachada *records.Facade) *CollectionHandler {
	return &CollectionHandler{fachada: fachada}
}

func (h *CollectionHandler) coleccion(c *fiber.Ctx) (store.Collection, bool) {
	col := store.Collection(c.Params("collection"))
	if !col.Valid() {
		_ = c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_COLLECTION", Message: "colección desconocida: " + string(col)})
		return "", false
	}
	if !h.fachada.Disponible() {
		_ = c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "almacén no configurado"})
		return "", false
	}
	return col, true
}

// Snapshot godoc
// @Summary      Snapshot completo de una colección
// @Tags         collections
// @Produce      json
// @Param        collection  path  string  true  "inventory | tickets | sales"
// @Success      200  {object}  dto.SnapshotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{collection} [get]
func (h *CollectionHandler) Snapshot(c *fiber.Ctx) error {
	col, ok := h.coleccion(c)
	if !ok {
		return nil
	}
	snap, err := leerSnapshot(c.UserContext(), h.fachada, col)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(snapshotDTO(snap))
}

// Create godoc
// @Summary      Crear documento
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        collection  path  string          true  "inventory | tickets | sales"
// @Param        body        body  map[string]any  true  "campos del documento"
// @Success      201  {object}  dto.CreateResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/{collection} [post]
func (h *CollectionHandler) Create(c *fiber.Ctx) error {
	col, ok := h.coleccion(c)
	if !ok {
		return nil
	}
	var fields store.Fields
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if res := validadores[col](fields); !res.Ok() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: res.PorCampo()})
	}
	id, err := h.fachada.Create(c.UserContext(), col, fields)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateResponse{ID: id})
}

// Update godoc
// @Summary      Actualizar documento (merge parcial)
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        collection  path  string          true  "inventory | tickets | sales"
// @Param        id          path  string          true  "id del documento"
// @Param        body        body  map[string]any  true  "solo los campos a cambiar"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{collection}/{id} [patch]
func (h *CollectionHandler) Update(c *fiber.Ctx) error {
	col, ok := h.coleccion(c)
	if !ok {
		return nil
	}
	var fields store.Fields
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	// merge parcial: no se exige el documento completo, solo se descarta "id"
	// (la fachada ya lo limpia; aquí solo evitamos un 204 engañoso con cuerpo vacío)
	if len(fields) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "sin campos que actualizar"})
	}
	if res := validadoresParciales[col](fields); !res.Ok() {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: res.PorCampo()})
	}
	if err := h.fachada.Update(c.UserContext(), col, c.Params("id"), fields); err != nil {
		if errors.Is(err, domain.ErrNoEncontrado) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Delete godoc
// @Summary      Eliminar documento (irreversible)
// @Tags         collections
// @Produce      json
// @Param        collection  path  string  true  "inventory | tickets | sales"
// @Param        id          path  string  true  "id del documento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{collection}/{id} [delete]
func (h *CollectionHandler) Delete(c *fiber.Ctx) error {
	col, ok := h.coleccion(c)
	if !ok {
		return nil
	}
	if err := h.fachada.Delete(c.UserContext(), col, c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// leerSnapshot obtiene una lectura puntual por la misma vía que las
// suscripciones: la entrega inicial es síncrona, así que basta con
// suscribirse, capturar y cancelar. El mutex cubre entregas remotas que
// pudieran llegar entre el registro y la cancelación.
func leerSnapshot(ctx context.Context, fachada *records.Facade, col store.Collection) (store.Snapshot, error) {
	var mu sync.Mutex
	var snap store.Snapshot
	var subErr error
	sub := fachada.Subscribe(ctx, col,
		func(s store.Snapshot) {
			mu.Lock()
			snap = s
			mu.Unlock()
		},
		func(err error) {
			mu.Lock()
			subErr = err
			mu.Unlock()
		},
	)
	sub.Cancel()
	mu.Lock()
	defer mu.Unlock()
	return snap, subErr
}

func snapshotDTO(snap store.Snapshot) dto.SnapshotResponse {
	out := dto.SnapshotResponse{
		Collection: string(snap.Collection),
		Documents:  make([]dto.DocumentResponse, 0, len(snap.Documents)),
	}
	for _, doc := range snap.Documents {
		out.Documents = append(out.Documents, dto.DocumentResponse{ID: doc.ID, Fields: doc.Fields})
	}
	return out
}
