package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Ivan0402201/Taller/internal/application/records"
	"github.com/Ivan0402201/Taller/internal/application/session"
	"github.com/Ivan0402201/Taller/internal/domain/store"
	"github.com/Ivan0402201/Taller/internal/infrastructure/memory"
	"github.com/Ivan0402201/Taller/internal/infrastructure/postgres"
	infraredis "github.com/Ivan0402201/Taller/internal/infrastructure/redis"
	"github.com/Ivan0402201/Taller/internal/interfaces/tui"
	"github.com/Ivan0402201/Taller/pkg/config"
	"github.com/Ivan0402201/Taller/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}

	// Con TUI el logger va a archivo: escribir a stderr pisaría la pantalla.
	logFile := cfg.Log.File
	if logFile == "" {
		logFile = "taller-console.log"
	}
	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		File:  logFile,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("backend", cfg.Store.Backend).
		Msg("iniciando consola del taller")

	ctx := context.Background()
	backend, limpiar := abrirBackend(ctx, cfg, log)
	defer limpiar()

	// El principal se establece antes de montar la UI; un token de arranque
	// inválido degrada a sesión anónima, nunca bloquea el arranque.
	sess := session.New()
	p := sess.EstablecerPrincipal(cfg.Auth.Secret, cfg.Auth.BootstrapToken)
	log.Info().Str("uid", p.UID).Bool("anonimo", p.Anonimo).Msg("principal establecido")

	fachada := records.New(backend, sess, log)

	programa := tea.NewProgram(tui.NewApp(sess, fachada, log), tea.WithAltScreen())
	if _, err := programa.Run(); err != nil {
		log.Error().Err(err).Msg("consola finalizada con error")
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	log.Info().Msg("consola detenida")
}

// abrirBackend construye el almacén según STORE_BACKEND. Un backend vacío no
// es fatal: la consola arranca en modo degradado con pantallas vacías.
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
