package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

// ChangeChannel canal NOTIFY emitido por el trigger de documents (payload = collection_path).
const ChangeChannel = "documents_changed"

// ErrFeedStopped se entrega a los watchers cuando el LISTEN se corta.
var ErrFeedStopped = errors.New("change feed detenido")

// ChangeFeed mantiene una conexión dedicada con LISTEN y reparte cada
// notificación a los triggers registrados para esa colección.
type ChangeFeed struct {
	pool *pgxpool.Pool
	log  *logger.Logger

	mu   sync.Mutex
	subs map[string]map[*docstore.Trigger]struct{}
	err  error
}

// NewChangeFeed construye el feed; se activa con Run.
func NewChangeFeed(pool *pgxpool.Pool, log *logger.Logger) *ChangeFeed {
	return &ChangeFeed{pool: pool, log: log, subs: map[string]map[*docstore.Trigger]struct{}{}}
}

// Subscribe registra un trigger para la colección path.
func (f *ChangeFeed) Subscribe(path string) (*docstore.Trigger, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	trig := docstore.NewTrigger()
	if f.subs[path] == nil {
		f.subs[path] = map[*docstore.Trigger]struct{}{}
	}
	f.subs[path][trig] = struct{}{}
	return trig, nil
}

// Unsubscribe libera el trigger.
func (f *ChangeFeed) Unsubscribe(path string, trig *docstore.Trigger) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs[path], trig)
	if len(f.subs[path]) == 0 {
		delete(f.subs, path)
	}
}

func (f *ChangeFeed) dispatch(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for trig := range f.subs[path] {
		trig.Fire()
	}
}

func (f *ChangeFeed) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	for _, set := range f.subs {
		for trig := range set {
			trig.Fail(err)
		}
	}
}

// Run escucha notificaciones hasta que ctx se cancele. Si la conexión se cae,
// todos los watchers reciben el error y el feed queda detenido (sin reintentos).
func (f *ChangeFeed) Run(ctx context.Context) error {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		f.fail(fmt.Errorf("%w: %v", ErrFeedStopped, err))
		return fmt.Errorf("acquire listen conn: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		f.fail(fmt.Errorf("%w: %v", ErrFeedStopped, err))
		return fmt.Errorf("listen %s: %w", ChangeChannel, err)
	}
	f.log.Info().Str("channel", ChangeChannel).Msg("change feed escuchando")

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				f.fail(ErrFeedStopped)
				return nil
			}
			f.log.Error().Err(err).Msg("change feed interrumpido")
			f.fail(fmt.Errorf("%w: %v", ErrFeedStopped, err))
			return fmt.Errorf("wait notification: %w", err)
		}
		f.dispatch(n.Payload)
	}
}
