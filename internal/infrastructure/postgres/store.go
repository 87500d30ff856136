// Package postgres implementa el puerto del almacén de documentos sobre
// PostgreSQL. Cada colección vive en su propia tabla tipada; la propagación
// en vivo usa LISTEN/NOTIFY: cada mutación emite pg_notify y una conexión
// dedicada re-consulta el snapshot completo y lo reparte a los suscriptores.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ivan0402201/Taller/internal/domain"
	"github.com/Ivan0402201/Taller/internal/domain/store"
	"github.com/Ivan0402201/Taller/pkg/logger"
)

// canalCambios es el canal de NOTIFY compartido; el payload es la colección.
const canalCambios = "taller_cambios"

const esquema = `
CREATE TABLE IF NOT EXISTS inventory (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	model      TEXT NOT NULL DEFAULT '',
	category   TEXT NOT NULL DEFAULT '',
	quantity   INTEGER NOT NULL DEFAULT 0,
	price      NUMERIC(12,2) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS tickets (
	id         UUID PRIMARY KEY,
	cliente    TEXT NOT NULL DEFAULT '',
	equipo     TEXT NOT NULL DEFAULT '',
	estado     TEXT NOT NULL DEFAULT 'PENDIENTE',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS sales (
	id         UUID PRIMARY KEY,
	lineas     JSONB NOT NULL DEFAULT '[]',
	total      NUMERIC(12,2) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// columnas por colección: campo de documento -> columna. Campos fuera del
// esquema se descartan en la escritura (las tablas son tipadas, no hay
// documentos abiertos).
var columnas = map[store.Collection][]string{
	store.Inventory: {"name", "model", "category", "quantity", "price"},
	store.Tickets:   {"cliente", "equipo", "estado"},
	store.Sales:     {"lineas", "total"},
}

type suscriptor struct {
	onChange func(store.Snapshot)
	onError  func(error)
}

// Store almacén de documentos sobre PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	log  *logger.Logger

	mu        sync.RWMutex
	subs      map[store.Collection]map[int]*suscriptor
	proximoID int

	cancelar context.CancelFunc
	hecho    chan struct{}
}

// New aplica el esquema idempotente y arranca el listener de cambios.
func New(ctx context.Context, pool *pgxpool.Pool, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	if _, err := pool.Exec(ctx, esquema); err != nil {
		return nil, fmt.Errorf("aplicar esquema: %w", err)
	}
	ctxListener, cancelar := context.WithCancel(context.Background())
	s := &Store{
		pool:     pool,
		log:      log,
		subs:     make(map[store.Collection]map[int]*suscriptor),
		cancelar: cancelar,
		hecho:    make(chan struct{}),
	}
	for _, c := range store.Collections {
		s.subs[c] = make(map[int]*suscriptor)
	}
	go s.escuchar(ctxListener)
	return s, nil
}

// Subscribe registra el listener y entrega de inmediato el snapshot actual.
func (s *Store) Subscribe(ctx context.Context, c store.Collection, onChange func(store.Snapshot), onError func(error)) (store.Subscription, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrColeccionInvalida, c)
	}
	snap, err := s.snapshot(ctx, c)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.proximoID++
	id := s.proximoID
	s.subs[c][id] = &suscriptor{onChange: onChange, onError: onError}
	s.mu.Unlock()

	if onChange != nil {
		onChange(snap)
	}
	return store.CancelFunc(func() {
		s.mu.Lock()
		delete(s.subs[c], id)
		s.mu.Unlock()
	}), nil
}

// Create inserta el documento; id y created_at los asigna el servidor.
func (s *Store) Create(ctx context.Context, c store.Collection, fields store.Fields) (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("%w: %s", domain.ErrColeccionInvalida, c)
	}
	id := uuid.New().String()
	cols := []string{"id"}
	args := []any{id}
	for _, col := range columnas[c] {
		if v, ok := fields[col]; ok {
			cols = append(cols, col)
			args = append(args, valorColumna(c, col, v))
		}
	}
	query := "INSERT INTO " + string(c) + " ("
	for i, col := range cols {
		if i > 0 {
			query += ", "
		}
		query += col
	}
	query += ") VALUES ("
	for i := range cols {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("$%d", i+1)
	}
	query += ")"
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert %s: %w", c, err)
	}
	s.notificar(ctx, c)
	return id, nil
}

// Update mergea solo los campos provistos (columnas conocidas) sobre la fila.
func (s *Store) Update(ctx context.Context, c store.Collection, id string, fields store.Fields) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrColeccionInvalida, c)
	}
	sets := ""
	args := []any{id}
	for _, col := range columnas[c] {
		if v, ok := fields[col]; ok {
			if sets != "" {
				sets += ", "
			}
			args = append(args, valorColumna(c, col, v))
			sets += fmt.Sprintf("%s = $%d", col, len(args))
		}
	}
	if sets == "" {
		return nil
	}
	cmd, err := s.pool.Exec(ctx, "UPDATE "+string(c)+" SET "+sets+" WHERE id = $1", args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", c, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", domain.ErrNoEncontrado, c, id)
	}
	s.notificar(ctx, c)
	return nil
}

// Delete borra la fila. Borrar un id inexistente no es error.
func (s *Store) Delete(ctx context.Context, c store.Collection, id string) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrColeccionInvalida, c)
	}
	if _, err := s.pool.Exec(ctx, "DELETE FROM "+string(c)+" WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete %s: %w", c, err)
	}
	s.notificar(ctx, c)
	return nil
}

// Close detiene el listener. El pool lo cierra quien lo creó.
func (s *Store) Close() error {
	s.cancelar()
	<-s.hecho
	return nil
}

func (s *Store) notificar(ctx context.Context, c store.Collection) {
	if _, err := s.pool.Exec(ctx, "SELECT pg_notify($1, $2)", canalCambios, string(c)); err != nil {
		s.log.Warn().Err(err).Str("coleccion", string(c)).Msg("pg_notify falló; los suscriptores remotos no verán este cambio")
	}
}

// escuchar mantiene una conexión dedicada en LISTEN y reparte snapshots
// frescos ante cada notificación. Reintenta con backoff fijo si la conexión
// se cae.
func (s *Store) escuchar(ctx context.Context) {
	defer close(s.hecho)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := s.escucharUnaConexion(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn().Err(err).Msg("listener de cambios caído; reintentando")
			select {
			case <-time.After(2 * time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (s *Store) escucharUnaConexion(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("adquirir conexión listener: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+canalCambios); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	for {
		notif, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		c := store.Collection(notif.Payload)
		if !c.Valid() {
			continue
		}
		snap, err := s.snapshot(ctx, c)
		if err != nil {
			s.reportarError(c, err)
			continue
		}
		s.publicar(snap)
	}
}

func (s *Store) publicar(snap store.Snapshot) {
	s.mu.RLock()
	listeners := make([]*suscriptor, 0, len(s.subs[snap.Collection]))
	for _, sub := range s.subs[snap.Collection] {
		listeners = append(listeners, sub)
	}
	s.mu.RUnlock()
	for _, sub := range listeners {
		if sub.onChange != nil {
			sub.onChange(snap)
		}
	}
}

func (s *Store) reportarError(c store.Collection, err error) {
	s.log.Error().Err(err).Str("coleccion", string(c)).Msg("re-consultar snapshot")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs[c] {
		if sub.onError != nil {
			sub.onError(err)
		}
	}
}

func (s *Store) snapshot(ctx context.Context, c store.Collection) (store.Snapshot, error) {
	cols := "id, created_at"
	for _, col := range columnas[c] {
		cols += ", " + col
	}
	rows, err := s.pool.Query(ctx, "SELECT "+cols+" FROM "+string(c))
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("query %s: %w", c, err)
	}
	defer rows.Close()

	snap := store.Snapshot{Collection: c}
	for rows.Next() {
		var id string
		var creado time.Time
		destinos := make([]any, 0, len(columnas[c])+2)
		destinos = append(destinos, &id, &creado)
		valores := make([]any, len(columnas[c]))
		for i := range valores {
			destinos = append(destinos, &valores[i])
		}
		if err := rows.Scan(destinos...); err != nil {
			return store.Snapshot{}, fmt.Errorf("scan %s: %w", c, err)
		}
		f := store.Fields{"createdAt": creado}
		for i, col := range columnas[c] {
			f[col] = valorCampo(col, valores[i])
		}
		snap.Documents = append(snap.Documents, store.Document{ID: id, Fields: f})
	}
	return snap, rows.Err()
}

// valorColumna adapta el valor del documento al tipo de la columna.
func valorColumna(c store.Collection, col string, v any) any {
	if c == store.Sales && col == "lineas" {
		b, err := json.Marshal(v)
		if err != nil {
			return []byte("[]")
		}
		return b
	}
	return v
}

// valorCampo adapta el valor leído de la fila al modelo de documento.
func valorCampo(col string, v any) any {
	if col == "lineas" {
		var lineas any
		switch raw := v.(type) {
		case []byte:
			if json.Unmarshal(raw, &lineas) == nil {
				return lineas
			}
		case string:
			if json.Unmarshal([]byte(raw), &lineas) == nil {
				return lineas
			}
		default:
			return v
		}
		return []any{}
	}
	if n, ok := v.(int32); ok {
		return int(n)
	}
	return v
}
