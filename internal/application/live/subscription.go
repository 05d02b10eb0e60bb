// Package live adapta consultas observables del almacén de documentos a un
// estado (registros, cargando, error) que se reemplaza completo en cada cambio.
package live

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
)

// SubscriptionError fallo de lectura de una suscripción (permiso o transporte).
type SubscriptionError struct {
	Operation string
	Path      string
	Err       error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// State instantánea consistente de una suscripción.
type State[T any] struct {
	Records []T
	Loading bool
	Err     error
}

// Subscription vincula una consulta (o nil, "aún no lista") a un estado observable.
// Cada Bind con una consulta estructuralmente distinta cancela la anterior antes de
// abrir la nueva; Close libera todo. Es segura para uso concurrente.
type Subscription[T any, P docstore.Identifiable[T]] struct {
	watcher docstore.Watcher
	bus     *ErrorBus

	mu      sync.Mutex
	bound   bool
	key     string
	gen     uint64
	cancel  context.CancelFunc
	state   State[P]
	changes chan State[P]
	closed  bool
}

// NewSubscription crea una suscripción sin vincular (Loading=true).
func NewSubscription[T any, P docstore.Identifiable[T]](watcher docstore.Watcher, bus *ErrorBus) *Subscription[T, P] {
	return &Subscription[T, P]{
		watcher: watcher,
		bus:     bus,
		state:   State[P]{Records: []P{}, Loading: true},
		changes: make(chan State[P], 1),
	}
}

// State devuelve el estado actual.
func (s *Subscription[T, P]) State() State[P] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Changes entrega cada nuevo estado. Tiene buffer 1 y conserva solo el último:
// un consumidor lento ve siempre el snapshot más reciente. Se cierra con Close.
func (s *Subscription[T, P]) Changes() <-chan State[P] {
	return s.changes
}

// Bind vincula la suscripción a q. Con q == nil queda en Loading sin suscribirse.
// Si q tiene la misma clave que la consulta actual no hace nada.
func (s *Subscription[T, P]) Bind(ctx context.Context, q *docstore.Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	key := q.Key()
	if s.bound && key == s.key {
		return
	}

	s.teardown()
	s.bound = true
	s.key = key
	s.gen++
	s.set(State[P]{Records: []P{}, Loading: true})
	if q == nil {
		return
	}

	gen := s.gen
	wctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	ch, err := s.watcher.Watch(wctx, q)
	if err != nil {
		s.failLocked(gen, q.Path, err)
		return
	}
	go s.pump(gen, q.Path, ch)
}

// Close cancela la suscripción activa y cierra Changes.
func (s *Subscription[T, P]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.teardown()
	s.gen++
	s.closed = true
	close(s.changes)
}

// teardown cancela el watch actual. Requiere s.mu.
func (s *Subscription[T, P]) teardown() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Subscription[T, P]) pump(gen uint64, path string, ch <-chan docstore.Snapshot) {
	for snap := range ch {
		if snap.Err != nil {
			s.fail(gen, path, snap.Err)
			return
		}
		records, err := docstore.DecodeAll[T, P](snap.Docs)
		if err != nil {
			s.fail(gen, path, err)
			return
		}
		s.mu.Lock()
		if gen != s.gen {
			s.mu.Unlock()
			return
		}
		s.set(State[P]{Records: records, Loading: false})
		s.mu.Unlock()
	}
}

func (s *Subscription[T, P]) fail(gen uint64, path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLocked(gen, path, err)
}

// failLocked deja el error en el estado, cancela el watch (sin reintento) y lo
// publica en el bus. Requiere s.mu.
func (s *Subscription[T, P]) failLocked(gen uint64, path string, err error) {
	if gen != s.gen {
		return
	}
	subErr := &SubscriptionError{Operation: "list", Path: path, Err: err}
	s.teardown()
	s.set(State[P]{Records: []P{}, Loading: false, Err: subErr})
	s.bus.Publish(subErr)
}

// set reemplaza el estado y lo publica en changes descartando uno pendiente. Requiere s.mu.
func (s *Subscription[T, P]) set(st State[P]) {
	s.state = st
	if s.closed {
		return
	}
	select {
	case s.changes <- st:
		return
	default:
	}
	select {
	case <-s.changes:
	default:
	}
	s.changes <- st
}
