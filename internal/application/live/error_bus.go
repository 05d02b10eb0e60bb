package live

import (
	"sync"
)

// ErrorBus canal de errores de suscripción compartido por el proceso. Se crea en
// main y se pasa explícitamente; los oyentes (log, métricas, SSE) se suscriben aquí.
type ErrorBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan *SubscriptionError
}

// NewErrorBus crea un bus vacío.
func NewErrorBus() *ErrorBus {
	return &ErrorBus{subs: map[int]chan *SubscriptionError{}}
}

// Subscribe registra un oyente con el buffer indicado. La función devuelta lo
// desregistra y cierra el canal.
func (b *ErrorBus) Subscribe(buffer int) (<-chan *SubscriptionError, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *SubscriptionError, buffer)
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish entrega err a todos los oyentes sin bloquear; si el buffer de un
// oyente está lleno, ese oyente pierde el evento.
func (b *ErrorBus) Publish(err *SubscriptionError) {
	if b == nil || err == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- err:
		default:
		}
	}
}
