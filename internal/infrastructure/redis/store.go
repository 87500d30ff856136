// Package redis implementa el puerto del almacén de documentos sobre Redis.
// Cada colección es un hash (campo = id, valor = documento JSON) bajo el
// prefijo del dataset compartido; la propagación usa pub/sub: cada mutación
// publica la colección tocada y los procesos suscritos re-leen el hash
// completo y reparten el snapshot.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Ivan0402201/Taller/internal/domain"
	"github.com/Ivan0402201/Taller/internal/domain/store"
	"github.com/Ivan0402201/Taller/pkg/config"
	"github.com/Ivan0402201/Taller/pkg/logger"
)

type suscriptor struct {
	onChange func(store.Snapshot)
	onError  func(error)
}

// Store almacén de documentos sobre Redis.
type Store struct {
	client *goredis.Client
	appID  string
	log    *logger.Logger

	mu        sync.RWMutex
	subs      map[store.Collection]map[int]*suscriptor
	proximoID int

	cancelar context.CancelFunc
	hecho    chan struct{}
}

// Connect abre el cliente, verifica con ping y arranca el listener de cambios.
func Connect(ctx context.Context, cfg config.RedisConfig, appID string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	ctxListener, cancelar := context.WithCancel(context.Background())
	s := &Store{
		client:   client,
		appID:    appID,
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

func (s *Store) claveHash(c store.Collection) string {
	return fmt.Sprintf("taller:%s:%s", s.appID, c)
}

func (s *Store) canalCambios() string {
	return fmt.Sprintf("taller:%s:cambios", s.appID)
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

// Create inserta el documento con id y createdAt asignados aquí (el servidor
// de este backend es el propio proceso que escribe).
func (s *Store) Create(ctx context.Context, c store.Collection, fields store.Fields) (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("%w: %s", domain.ErrColeccionInvalida, c)
	}
	doc := fields.Clone()
	delete(doc, "id")
	doc["createdAt"] = time.Now().UTC().Format(time.RFC3339Nano)
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("serializar documento: %w", err)
	}
	id := uuid.New().String()
	if err := s.client.HSet(ctx, s.claveHash(c), id, raw).Err(); err != nil {
		return "", fmt.Errorf("hset %s: %w", c, err)
	}
	s.publicarCambio(ctx, c)
	return id, nil
}

// Update mergea solo los campos provistos sobre el documento almacenado.
// Last-write-wins, sin detección de conflictos.
func (s *Store) Update(ctx context.Context, c store.Collection, id string, fields store.Fields) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrColeccionInvalida, c)
	}
	raw, err := s.client.HGet(ctx, s.claveHash(c), id).Result()
	if err == goredis.Nil {
		return fmt.Errorf("%w: %s/%s", domain.ErrNoEncontrado, c, id)
	}
	if err != nil {
		return fmt.Errorf("hget %s: %w", c, err)
	}
	doc := store.Fields{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return fmt.Errorf("decodificar documento: %w", err)
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	nuevo, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("serializar documento: %w", err)
	}
	if err := s.client.HSet(ctx, s.claveHash(c), id, nuevo).Err(); err != nil {
		return fmt.Errorf("hset %s: %w", c, err)
	}
	s.publicarCambio(ctx, c)
	return nil
}

// Delete borra el documento. Borrar un id inexistente no es error.
func (s *Store) Delete(ctx context.Context, c store.Collection, id string) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrColeccionInvalida, c)
	}
	if err := s.client.HDel(ctx, s.claveHash(c), id).Err(); err != nil {
		return fmt.Errorf("hdel %s: %w", c, err)
	}
	s.publicarCambio(ctx, c)
	return nil
}

// Close detiene el listener y cierra el cliente.
func (s *Store) Close() error {
	s.cancelar()
	<-s.hecho
	return s.client.Close()
}

func (s *Store) publicarCambio(ctx context.Context, c store.Collection) {
	if err := s.client.Publish(ctx, s.canalCambios(), string(c)).Err(); err != nil {
		s.log.Warn().Err(err).Str("coleccion", string(c)).Msg("publish falló; los suscriptores remotos no verán este cambio")
	}
}

// escuchar consume el canal de cambios y reparte snapshots frescos. El
// cliente de go-redis reconecta el pub/sub por sí solo.
func (s *Store) escuchar(ctx context.Context) {
	defer close(s.hecho)
	pubsub := s.client.Subscribe(ctx, s.canalCambios())
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			c := store.Collection(msg.Payload)
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
	s.log.Error().Err(err).Str("coleccion", string(c)).Msg("re-leer snapshot")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subs[c] {
		if sub.onError != nil {
			sub.onError(err)
		}
	}
}

func (s *Store) snapshot(ctx context.Context, c store.Collection) (store.Snapshot, error) {
	entradas, err := s.client.HGetAll(ctx, s.claveHash(c)).Result()
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("hgetall %s: %w", c, err)
	}
	snap := store.Snapshot{Collection: c}
	for id, raw := range entradas {
		f := store.Fields{}
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			s.log.Warn().Str("coleccion", string(c)).Str("id", id).Msg("documento corrupto en el hash; se omite")
			continue
		}
		snap.Documents = append(snap.Documents, store.Document{ID: id, Fields: f})
	}
	return snap, nil
}
