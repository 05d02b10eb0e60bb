package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/memstore"
)

// fakeWatcher registra cada Watch y deja al test controlar los snapshots.
type fakeWatcher struct {
	mu      sync.Mutex
	calls   []watchCall
	openErr error
}

type watchCall struct {
	ctx context.Context
	key string
	ch  chan docstore.Snapshot
	// prevCanceled indica si el watch anterior ya estaba cancelado al abrir este.
	prevCanceled bool
}

func (f *fakeWatcher) Watch(ctx context.Context, q *docstore.Query) (<-chan docstore.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	call := watchCall{ctx: ctx, key: q.Key(), ch: make(chan docstore.Snapshot, 4), prevCanceled: true}
	if n := len(f.calls); n > 0 {
		call.prevCanceled = f.calls[n-1].ctx.Err() != nil
	}
	f.calls = append(f.calls, call)
	return call.ch, nil
}

func (f *fakeWatcher) call(i int) watchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func (f *fakeWatcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func doc(id, name string) docstore.Document {
	return docstore.Document{ID: id, Data: []byte(`{"name":"` + name + `"}`)}
}

func next(t *testing.T, sub *Subscription[entity.Warehouse, *entity.Warehouse]) State[*entity.Warehouse] {
	t.Helper()
	select {
	case st, ok := <-sub.Changes():
		require.True(t, ok)
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("timeout esperando estado")
	}
	return State[*entity.Warehouse]{}
}

// ── Consulta nil ─────────────────────────────────────────────────────────────

func TestBind_NilQuedaCargandoSinSuscribirse(t *testing.T) {
	w := &fakeWatcher{}
	sub := NewSubscription[entity.Warehouse](w, NewErrorBus())
	defer sub.Close()

	sub.Bind(context.Background(), nil)
	st := sub.State()
	assert.True(t, st.Loading)
	assert.Empty(t, st.Records)
	assert.NoError(t, st.Err)
	assert.Zero(t, w.count(), "no debe intentar ninguna llamada remota")
}

// ── Snapshots ────────────────────────────────────────────────────────────────

func TestBind_CadaSnapshotReemplazaLaLista(t *testing.T) {
	w := &fakeWatcher{}
	sub := NewSubscription[entity.Warehouse](w, NewErrorBus())
	defer sub.Close()

	sub.Bind(context.Background(), docstore.Collection("warehouses"))
	assert.True(t, next(t, sub).Loading)

	c := w.call(0)
	c.ch <- docstore.Snapshot{Docs: []docstore.Document{doc("w1", "Main"), doc("w2", "Cold")}}
	st := next(t, sub)
	assert.False(t, st.Loading)
	require.Len(t, st.Records, 2)
	assert.Equal(t, "w1", st.Records[0].ID, "el id del documento se inyecta")
	assert.Equal(t, "Main", st.Records[0].Name)

	c.ch <- docstore.Snapshot{Docs: []docstore.Document{doc("w3", "Backroom")}}
	st = next(t, sub)
	require.Len(t, st.Records, 1)
	assert.Equal(t, "Backroom", st.Records[0].Name)
}

// ── Cambio de consulta ───────────────────────────────────────────────────────

func TestBind_MismaClaveNoResuscribe(t *testing.T) {
	w := &fakeWatcher{}
	sub := NewSubscription[entity.Warehouse](w, NewErrorBus())
	defer sub.Close()

	sub.Bind(context.Background(), docstore.Collection("warehouses").OrderBy("name", false))
	sub.Bind(context.Background(), docstore.Collection("/warehouses/").OrderBy("name", false))
	assert.Equal(t, 1, w.count())
}

func TestBind_CambioCancelaAntesDeAbrirYDescartaObsoletos(t *testing.T) {
	w := &fakeWatcher{}
	sub := NewSubscription[entity.Warehouse](w, NewErrorBus())
	defer sub.Close()

	sub.Bind(context.Background(), nil)
	sub.Bind(context.Background(), docstore.Collection(docstore.UserCollection("u1", docstore.Receipts)))
	sub.Bind(context.Background(), docstore.Collection(docstore.UserCollection("u2", docstore.Receipts)))
	require.Equal(t, 2, w.count())

	first, second := w.call(0), w.call(1)
	assert.True(t, second.prevCanceled, "el listener anterior se cancela antes de abrir el nuevo")
	assert.Error(t, first.ctx.Err())
	assert.NoError(t, second.ctx.Err())

	// Un snapshot tardío del listener viejo no debe llegar al estado.
	first.ch <- docstore.Snapshot{Docs: []docstore.Document{doc("old", "stale")}}
	second.ch <- docstore.Snapshot{Docs: []docstore.Document{doc("new", "fresh")}}

	require.Eventually(t, func() bool {
		st := sub.State()
		return !st.Loading && len(st.Records) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "fresh", sub.State().Records[0].Name)
}

// ── Errores ──────────────────────────────────────────────────────────────────

func TestBind_ErrorLimpiaRegistrosYPublicaEnElBus(t *testing.T) {
	w := &fakeWatcher{}
	bus := NewErrorBus()
	errs, unsubscribe := bus.Subscribe(4)
	defer unsubscribe()
	sub := NewSubscription[entity.Warehouse](w, bus)
	defer sub.Close()

	sub.Bind(context.Background(), docstore.Collection("warehouses"))
	c := w.call(0)
	c.ch <- docstore.Snapshot{Docs: []docstore.Document{doc("w1", "Main")}}
	require.Eventually(t, func() bool { return len(sub.State().Records) == 1 }, time.Second, 10*time.Millisecond)

	boom := errors.New("transport closed")
	c.ch <- docstore.Snapshot{Err: boom}

	select {
	case got := <-errs:
		assert.Equal(t, "list", got.Operation)
		assert.Equal(t, "warehouses", got.Path)
		assert.ErrorIs(t, got, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("el error no llegó al bus")
	}
	st := sub.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Records)
	var subErr *SubscriptionError
	assert.ErrorAs(t, st.Err, &subErr)

	assert.Eventually(t, func() bool { return c.ctx.Err() != nil }, time.Second, 10*time.Millisecond, "no hay reintento: el watch queda cancelado")
	assert.Equal(t, 1, w.count())
}

func TestBind_PermisoDenegadoConStoreReal(t *testing.T) {
	bus := NewErrorBus()
	errs, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()
	scoped := docstore.ForUser(memstore.New(), "u1")
	sub := NewSubscription[entity.Receipt](scoped, bus)
	defer sub.Close()

	sub.Bind(context.Background(), docstore.Collection(docstore.UserCollection("u2", docstore.Receipts)))

	st := sub.State()
	assert.False(t, st.Loading)
	assert.ErrorIs(t, st.Err, domain.ErrPermissionDenied)
	got := <-errs
	assert.Equal(t, "users/u2/receipts", got.Path)
}

func TestBind_ReintentoManualConConsultaCorregida(t *testing.T) {
	w := &fakeWatcher{openErr: errors.New("denied")}
	sub := NewSubscription[entity.Warehouse](w, NewErrorBus())
	defer sub.Close()

	sub.Bind(context.Background(), docstore.Collection("warehouses"))
	assert.Error(t, sub.State().Err)

	w.mu.Lock()
	w.openErr = nil
	w.mu.Unlock()
	sub.Bind(context.Background(), docstore.Collection("warehouses").Limit(10))
	st := sub.State()
	assert.NoError(t, st.Err)
	assert.True(t, st.Loading)
	assert.Equal(t, 1, w.count())
}

// ── Close ────────────────────────────────────────────────────────────────────

func TestClose_CancelaYCierraChanges(t *testing.T) {
	w := &fakeWatcher{}
	sub := NewSubscription[entity.Warehouse](w, NewErrorBus())
	sub.Bind(context.Background(), docstore.Collection("warehouses"))
	c := w.call(0)

	sub.Close()
	assert.Error(t, c.ctx.Err())

	for range sub.Changes() {
	}
	sub.Bind(context.Background(), docstore.Collection("products"))
	assert.Equal(t, 1, w.count(), "Bind tras Close no hace nada")
	sub.Close()
}

func TestSubscription_ExtremoAExtremoConMemstore(t *testing.T) {
	store := memstore.New()
	sub := NewSubscription[entity.Warehouse](store, NewErrorBus())
	defer sub.Close()

	sub.Bind(context.Background(), docstore.Collection("warehouses").OrderBy("name", false))
	_, err := store.Add(context.Background(), "warehouses", entity.Warehouse{Name: "Main Warehouse"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st := sub.State()
		return !st.Loading && len(st.Records) == 1
	}, 2*time.Second, 10*time.Millisecond)

	sub.Close()
	assert.Eventually(t, func() bool { return store.Watchers("warehouses") == 0 }, time.Second, 10*time.Millisecond, "ningún listener sobrevive a Close")
}

// ── ErrorBus ─────────────────────────────────────────────────────────────────

func TestErrorBus_NoBloqueaConOyenteLento(t *testing.T) {
	bus := NewErrorBus()
	_, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(&SubscriptionError{Operation: "list", Path: "p"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish bloqueó")
	}
}
