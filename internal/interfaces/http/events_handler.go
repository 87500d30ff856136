package http

import (
	"bufio"
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/Ivan0402201/Taller/internal/application/dto"
	"github.com/Ivan0402201/Taller/internal/application/records"
	"github.com/Ivan0402201/Taller/internal/domain/store"
	"github.com/Ivan0402201/Taller/pkg/logger"
)

// EventsHandler transmite snapshots por Server-Sent Events. Cada evento es el
// conjunto completo de la colección (snapshot-replace, nunca diffs): el
// primero llega al conectar y los siguientes tras cada mutación.
type EventsHandler struct {
	fachada *records.Facade
	log     *logger.Logger
}

// NewEventsHandler construye el handler de eventos.
func NewEventsHandler(fachada *records.Facade, log *logger.Logger) *EventsHandler {
	return &EventsHandler{fachada: fachada, log: log}
}

// Stream godoc
// @Summary      Suscripción en vivo a una colección (SSE)
// @Tags         collections
// @Produce      text/event-stream
// @Param        collection  path  string  true  "inventory | tickets | sales"
// @Success      200  {string}  string  "stream de snapshots"
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{collection}/events [get]
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	col := store.Collection(c.Params("collection"))
	if !col.Valid() {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_COLLECTION", Message: "colección desconocida: " + string(col)})
	}
	if !h.fachada.Disponible() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "almacén no configurado"})
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	h.log.Info().Str("uid", GetUID(c)).Str("coleccion", string(col)).Msg("cliente SSE conectado")

	// El *fiber.Ctx se recicla al retornar: el writer de stream solo puede
	// capturar dependencias propias, nunca c.
	fachada := h.fachada
	log := h.log
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancelar := context.WithCancel(context.Background())
		defer cancelar()

		// buffer 1 + drop-oldest: solo importa el snapshot más reciente
		cambios := make(chan store.Snapshot, 1)
		sub := fachada.Subscribe(ctx, col,
			func(s store.Snapshot) {
				for {
					select {
					case cambios <- s:
						return
					default:
						select {
						case <-cambios:
						default:
						}
					}
				}
			},
			func(err error) {
				log.Warn().Err(err).Str("coleccion", string(col)).Msg("error en suscripción SSE")
			},
		)
		defer sub.Cancel()

		// keepalive: un comentario periódico detecta clientes desconectados
		// aunque la colección no cambie
		latido := time.NewTicker(15 * time.Second)
		defer latido.Stop()

		for {
			select {
			case snap := <-cambios:
				payload, err := json.Marshal(snapshotDTO(snap))
				if err != nil {
					log.Error().Err(err).Msg("serializar snapshot SSE")
					return
				}
				if _, err := w.WriteString("data: " + string(payload) + "\n\n"); err != nil {
					return
				}
			case <-latido.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
			}
			if err := w.Flush(); err != nil {
				// el cliente cerró la conexión
				return
			}
		}
	}))
	return nil
}
