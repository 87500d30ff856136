// Package records expone la fachada del almacén de registros que consumen
// los controladores de vista. Encapsula dos comportamientos que el puerto
// crudo no tiene: la degradación silenciosa cuando no hay backend
// configurado o el principal aún no está listo, y la limpieza del payload
// en updates (el identificador jamás se mergea sobre sí mismo).
//
// Es una instancia construida e inyectada explícitamente, con ciclo de vida
// atado a la aplicación; nada de handles globales a nivel de módulo.
package records

import (
	"context"
	"time"

	"github.com/Ivan0402201/Taller/internal/domain/store"
	"github.com/Ivan0402201/Taller/pkg/logger"
)

// Readiness es la señal de "auth listo" que gatea las operaciones.
// La satisface session.Session.
type Readiness interface {
	Ready() bool
}

// umbralStall: una operación de store más lenta que esto se loguea como
// warning. No hay timeouts: una llamada colgada simplemente no resuelve y
// la UI queda en su estado optimista; lo mínimo exigible es dejar rastro.
const umbralStall = 2 * time.Second

// Facade fachada del almacén de registros. backend nil = sin configuración:
// las cuatro operaciones resuelven de inmediato sin tocar red alguna.
type Facade struct {
	backend store.Store
	ready   Readiness
	log     *logger.Logger
}

// siempreListo se usa cuando no hay señal de readiness que esperar
// (la pasarela establece principales por petición, no por proceso).
type siempreListo struct{}

func (siempreListo) Ready() bool { return true }

// New construye la fachada. backend puede ser nil (degradación total);
// ready puede ser nil (se asume listo desde el arranque).
func New(backend store.Store, ready Readiness, log *logger.Logger) *Facade {
	if ready == nil {
		ready = siempreListo{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Facade{backend: backend, ready: ready, log: log}
}

// Disponible indica si hay backend configurado y el principal está listo.
// La UI gatea la interacción en esto, no en fallos de operación.
func (f *Facade) Disponible() bool {
	return f.backend != nil && f.ready.Ready()
}

// Subscribe registra una consulta en vivo sobre la colección. Sin backend o
// sin principal no se registra nada y se devuelve un handle inerte: la
// pantalla simplemente queda vacía, igual que la degradación de la fuente.
func (f *Facade) Subscribe(ctx context.Context, c store.Collection, onChange func(store.Snapshot), onError func(error)) store.Subscription {
	if !f.Disponible() {
		f.log.Debug().Str("coleccion", string(c)).Msg("subscribe sin backend: listener inerte")
		return store.CancelFunc(nil)
	}
	sub, err := f.backend.Subscribe(ctx, c, onChange, onError)
	if err != nil {
		f.log.Error().Err(err).Str("coleccion", string(c)).Msg("registrar suscripción")
		if onError != nil {
			onError(err)
		}
		return store.CancelFunc(nil)
	}
	return sub
}

// Create inserta un documento; el backend asigna id y timestamp de servidor.
// Sin backend es un no-op silencioso que devuelve id vacío y nil.
func (f *Facade) Create(ctx context.Context, c store.Collection, fields store.Fields) (string, error) {
	if !f.Disponible() {
		f.log.Debug().Str("coleccion", string(c)).Msg("create sin backend: no-op")
		return "", nil
	}
	limpio := fields.Clone()
	delete(limpio, "id")
	inicio := time.Now()
	id, err := f.backend.Create(ctx, c, limpio)
	f.medir("create", c, inicio, err)
	return id, err
}

// Update mergea solo los campos provistos sobre el documento id. El campo
// "id" se elimina del payload antes del merge: el identificador es inmutable.
func (f *Facade) Update(ctx context.Context, c store.Collection, id string, fields store.Fields) error {
	if !f.Disponible() {
		f.log.Debug().Str("coleccion", string(c)).Msg("update sin backend: no-op")
		return nil
	}
	limpio := fields.Clone()
	delete(limpio, "id")
	inicio := time.Now()
	err := f.backend.Update(ctx, c, id, limpio)
	f.medir("update", c, inicio, err)
	return err
}

// Delete borra el documento id. Borrado duro, sin tombstone ni deshacer.
func (f *Facade) Delete(ctx context.Context, c store.Collection, id string) error {
	if !f.Disponible() {
		f.log.Debug().Str("coleccion", string(c)).Msg("delete sin backend: no-op")
		return nil
	}
	inicio := time.Now()
	err := f.backend.Delete(ctx, c, id)
	f.medir("delete", c, inicio, err)
	return err
}

func (f *Facade) medir(op string, c store.Collection, inicio time.Time, err error) {
	dur := time.Since(inicio)
	ev := f.log.Debug()
	if dur > umbralStall {
		ev = f.log.Warn()
	}
	if err != nil {
		ev = f.log.Error().Err(err)
	}
	ev.Str("op", op).Str("coleccion", string(c)).Dur("duracion", dur).Msg("operación de store")
}
