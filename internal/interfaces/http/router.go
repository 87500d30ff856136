package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Ivan0402201/Taller/internal/application/records"
	"github.com/Ivan0402201/Taller/pkg/config"
	"github.com/Ivan0402201/Taller/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Fachada *records.Facade
	Auth    config.AuthConfig
	AppID   string
	Log     *logger.Logger
}

// Router registra las rutas de la pasarela de sincronización.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Sesión (público: el intercambio degrada a anónimo, nunca rechaza)
	sessionHandler := NewSessionHandler(deps.Auth, deps.AppID, deps.Log)
	api.Post("/session", sessionHandler.Exchange)

	// Dataset compartido (protegido: requiere el token de sesión)
	protected := api.Group("/", AuthMiddleware(deps.Auth.Secret))
	collectionHandler := NewCollectionHandler(deps.Fachada)
	eventsHandler := NewEventsHandler(deps.Fachada, deps.Log)

	protected.Get("/:collection/events", eventsHandler.Stream)
	protected.Get("/:collection", collectionHandler.Snapshot)
	protected.Post("/:collection", collectionHandler.Create)
	protected.Patch("/:collection/:id", collectionHandler.Update)
	protected.Delete("/:collection/:id", collectionHandler.Delete)
}
