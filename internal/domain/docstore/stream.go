package docstore

import (
	"context"
	"sync"
)

// Trigger señal de cambios de un watcher. Varias señales seguidas se fusionan en
// una sola; Fail marca el feed como caído y despierta al stream.
type Trigger struct {
	ch  chan struct{}
	mu  sync.Mutex
	err error
}

// NewTrigger crea un trigger listo para usar.
func NewTrigger() *Trigger {
	return &Trigger{ch: make(chan struct{}, 1)}
}

// Fire avisa que la colección cambió. Nunca bloquea.
func (t *Trigger) Fire() {
	select {
	case t.ch <- struct{}{}:
	default:
	}
}

// Fail registra un error terminal del feed.
func (t *Trigger) Fail(err error) {
	t.mu.Lock()
	if t.err == nil {
		t.err = err
	}
	t.mu.Unlock()
	t.Fire()
}

// Err devuelve el error terminal, si lo hay.
func (t *Trigger) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Stream ejecuta run una vez y luego cada vez que trig se dispara, entregando
// el snapshot completo. Termina al cancelar ctx o tras entregar un error.
func Stream(ctx context.Context, trig *Trigger, run func(context.Context) ([]Document, error)) <-chan Snapshot {
	out := make(chan Snapshot, 1)
	go func() {
		defer close(out)
		emit := func(snap Snapshot) bool {
			select {
			case out <- snap:
				return snap.Err == nil
			case <-ctx.Done():
				return false
			}
		}
		refresh := func() bool {
			docs, err := run(ctx)
			if ctx.Err() != nil {
				return false
			}
			return emit(Snapshot{Docs: docs, Err: err})
		}
		if !refresh() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-trig.ch:
				if err := trig.Err(); err != nil {
					emit(Snapshot{Err: err})
					return
				}
				if !refresh() {
					return
				}
			}
		}
	}()
	return out
}
