package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Ivan0402201/Taller/internal/application/records"
	"github.com/Ivan0402201/Taller/internal/domain/store"
	"github.com/Ivan0402201/Taller/internal/infrastructure/memory"
	"github.com/Ivan0402201/Taller/internal/infrastructure/postgres"
	infraredis "github.com/Ivan0402201/Taller/internal/infrastructure/redis"
	httpRouter "github.com/Ivan0402201/Taller/internal/interfaces/http"
	"github.com/Ivan0402201/Taller/pkg/config"
	"github.com/Ivan0402201/Taller/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("backend", cfg.Store.Backend).
		Msg("iniciando pasarela de sincronización")

	ctx := context.Background()
	backend, limpiar := abrirBackend(ctx, cfg, log)
	defer limpiar()

	// La pasarela no espera señal de auth: los principales se establecen por
	// petición en /api/session.
	fachada := records.New(backend, nil, log)

	app := fiber.New(fiber.Config{
		AppName:     cfg.App.Name,
		ReadTimeout: time.Second * 10,
		IdleTimeout: time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Taller Móvil Pro API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": fachada.Disponible()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Fachada: fachada,
		Auth:    cfg.Auth,
		AppID:   cfg.App.ID,
		Log:     log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("pasarela detenida")
}

// abrirBackend construye el almacén según STORE_BACKEND. Un backend vacío no
// es fatal: la fachada degrada todas las operaciones a no-op y la API
// responde 503 en las rutas de datos.
func abrirBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Store, func()) {
	switch cfg.Store.Backend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		st, err := postgres.New(ctx, pool, log)
		if err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("inicializar almacén PostgreSQL")
		}
		return st, func() {
			_ = st.Close()
			pool.Close()
		}
	case "redis":
		st, err := infraredis.Connect(ctx, cfg.Redis, cfg.App.ID, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		return st, func() { _ = st.Close() }
	case "memory":
		st := memory.New()
		return st, func() { _ = st.Close() }
	case "":
		log.Warn().Msg("STORE_BACKEND vacío: arrancando sin almacén (modo degradado)")
		return nil, func() {}
	default:
		log.Fatal().Str("backend", cfg.Store.Backend).Msg("STORE_BACKEND desconocido")
		return nil, func() {}
	}
}
