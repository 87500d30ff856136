// Package memory implementa el puerto del almacén de documentos en memoria.
// Se usa en tests y como backend de desarrollo sin infraestructura. El
// fan-out de snapshots es síncrono con la mutación, lo que vuelve
// deterministas los tests de suscripción.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ivan0402201/Taller/internal/domain"
	"github.com/Ivan0402201/Taller/internal/domain/store"
)

type suscriptor struct {
	onChange func(store.Snapshot)
	onError  func(error)
}

// Store almacén de documentos en memoria, seguro para uso concurrente.
type Store struct {
	mu        sync.RWMutex
	docs      map[store.Collection]map[string]store.Fields
	subs      map[store.Collection]map[int]*suscriptor
	proximoID int
	cerrado   bool

	// ahora permite inyectar el reloj en tests
	ahora func() time.Time
}

// New crea un almacén vacío con todas las colecciones conocidas.
func New() *Store {
	s := &Store{
		docs:  make(map[store.Collection]map[string]store.Fields),
		subs:  make(map[store.Collection]map[int]*suscriptor),
		ahora: time.Now,
	}
	for _, c := range store.Collections {
		s.docs[c] = make(map[string]store.Fields)
		s.subs[c] = make(map[int]*suscriptor)
	}
	return s
}

// WithClock reemplaza el reloj usado para createdAt. Solo para tests.
func (s *Store) WithClock(ahora func() time.Time) *Store {
	s.ahora = ahora
	return s
}

// Subscribe registra el listener y entrega de inmediato el snapshot actual.
func (s *Store) Subscribe(_ context.Context, c store.Collection, onChange func(store.Snapshot), onError func(error)) (store.Subscription, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrColeccionInvalida, c)
	}
	s.mu.Lock()
	if s.cerrado {
		s.mu.Unlock()
		return nil, domain.ErrStoreNoDisponible
	}
	s.proximoID++
	id := s.proximoID
	s.subs[c][id] = &suscriptor{onChange: onChange, onError: onError}
	snap := s.snapshotLocked(c)
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

// Create inserta el documento con id y createdAt asignados por el almacén.
func (s *Store) Create(_ context.Context, c store.Collection, fields store.Fields) (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("%w: %s", domain.ErrColeccionInvalida, c)
	}
	doc := fields.Clone()
	delete(doc, "id")
	doc["createdAt"] = s.ahora().UTC()
	id := uuid.New().String()

	s.mu.Lock()
	if s.cerrado {
		s.mu.Unlock()
		return "", domain.ErrStoreNoDisponible
	}
	s.docs[c][id] = doc
	s.mu.Unlock()

	s.publicar(c)
	return id, nil
}

// Update mergea solo los campos provistos sobre el documento existente.
func (s *Store) Update(_ context.Context, c store.Collection, id string, fields store.Fields) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrColeccionInvalida, c)
	}
	s.mu.Lock()
	if s.cerrado {
		s.mu.Unlock()
		return domain.ErrStoreNoDisponible
	}
	actual, ok := s.docs[c][id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s/%s", domain.ErrNoEncontrado, c, id)
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		actual[k] = v
	}
	s.mu.Unlock()

	s.publicar(c)
	return nil
}

// Delete borra el documento. Borrar un id inexistente no es error.
func (s *Store) Delete(_ context.Context, c store.Collection, id string) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrColeccionInvalida, c)
	}
	s.mu.Lock()
	if s.cerrado {
		s.mu.Unlock()
		return domain.ErrStoreNoDisponible
	}
	delete(s.docs[c], id)
	s.mu.Unlock()

	s.publicar(c)
	return nil
}

// Close desregistra todos los listeners y rechaza operaciones posteriores.
func (s *Store) Close() error {
	s.mu.Lock()
	s.cerrado = true
	for _, c := range store.Collections {
		s.subs[c] = make(map[int]*suscriptor)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) snapshotLocked(c store.Collection) store.Snapshot {
	docs := make([]store.Document, 0, len(s.docs[c]))
	for id, f := range s.docs[c] {
		docs = append(docs, store.Document{ID: id, Fields: f.Clone()})
	}
	return store.Snapshot{Collection: c, Documents: docs}
}

// publicar entrega el snapshot completo a todos los suscriptores de la
// colección, en el mismo goroutine de la mutación.
func (s *Store) publicar(c store.Collection) {
	s.mu.RLock()
	snap := s.snapshotLocked(c)
	listeners := make([]*suscriptor, 0, len(s.subs[c]))
	for _, sub := range s.subs[c] {
		listeners = append(listeners, sub)
	}
	s.mu.RUnlock()

	for _, sub := range listeners {
		if sub.onChange != nil {
			sub.onChange(snap)
		}
	}
}
