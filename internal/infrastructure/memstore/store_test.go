package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
)

type item struct {
	Name   string `json:"name"`
	Stock  int    `json:"stock"`
	Status string `json:"status,omitempty"`
}

func seedItems(t *testing.T, s *Store) map[string]string {
	t.Helper()
	ids := map[string]string{}
	for _, it := range []item{
		{Name: "Bananas", Stock: 1500, Status: "Done"},
		{Name: "Avocado", Stock: 45, Status: "Draft"},
		{Name: "Cheddar", Stock: 0, Status: "Waiting"},
		{Name: "Tomatoes", Stock: 250, Status: "Ready"},
	} {
		id, err := s.Add(context.Background(), "products", it)
		require.NoError(t, err)
		ids[it.Name] = id
	}
	return ids
}

func names(t *testing.T, docs []docstore.Document) []string {
	t.Helper()
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		var it item
		require.NoError(t, d.DataTo(&it))
		out = append(out, it.Name)
	}
	return out
}

// ── CRUD ─────────────────────────────────────────────────────────────────────

func TestCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Add(ctx, "products", item{Name: "Bananas", Stock: 10})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	doc, err := s.Get(ctx, "products", id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.JSONEq(t, `{"name":"Bananas","stock":10}`, string(doc.Data))

	require.NoError(t, s.Update(ctx, "products", id, map[string]any{"stock": 12}))
	doc, _ = s.Get(ctx, "products", id)
	assert.JSONEq(t, `{"name":"Bananas","stock":12}`, string(doc.Data))

	require.NoError(t, s.Delete(ctx, "products", id))
	doc, err = s.Get(ctx, "products", id)
	require.NoError(t, err)
	assert.Nil(t, doc, "Get devuelve (nil, nil) si no existe")

	assert.NoError(t, s.Delete(ctx, "products", id), "Delete es idempotente")
}

func TestUpdate_NoExiste(t *testing.T) {
	err := New().Update(context.Background(), "products", "nope", map[string]any{"a": 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSet_ConservaCreatedAt(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return now }))
	require.NoError(t, s.Set(ctx, "warehouses", "w1", item{Name: "Main"}))
	now = now.Add(time.Hour)
	require.NoError(t, s.Set(ctx, "warehouses", "w1", item{Name: "Main 2"}))

	doc, err := s.Get(ctx, "warehouses", "w1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), doc.CreatedAt)
	assert.Equal(t, now, doc.UpdatedAt)
}

func TestAdd_RutaDeDocumentoRechazada(t *testing.T) {
	_, err := New().Add(context.Background(), "users/u1", item{})
	assert.Error(t, err)
}

// ── Consultas ────────────────────────────────────────────────────────────────

func TestQuery_FiltrosOrdenLimite(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedItems(t, s)

	docs, err := s.Query(ctx, docstore.Collection("products").Where("stock", docstore.OpLessEq, 250).OrderBy("stock", true))
	require.NoError(t, err)
	assert.Equal(t, []string{"Tomatoes", "Avocado", "Cheddar"}, names(t, docs))

	docs, err = s.Query(ctx, docstore.Collection("products").Where("status", docstore.OpIn, []string{"Waiting", "Ready"}).OrderBy("name", false))
	require.NoError(t, err)
	assert.Equal(t, []string{"Cheddar", "Tomatoes"}, names(t, docs))

	docs, err = s.Query(ctx, docstore.Collection("products").OrderBy("stock", true).Limit(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bananas", "Tomatoes"}, names(t, docs))
}

func TestQuery_TiposDistintosNoComparan(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedItems(t, s)

	docs, err := s.Query(ctx, docstore.Collection("products").Where("stock", docstore.OpGreater, "0"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestQuery_CamposAusentesAlFinal(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.Add(ctx, "products", map[string]any{"name": "sin fecha"})
	_, _ = s.Add(ctx, "products", map[string]any{"name": "vieja", "date": "2026-01-01T00:00:00Z"})
	_, _ = s.Add(ctx, "products", map[string]any{"name": "nueva", "date": "2026-02-01T00:00:00Z"})

	docs, err := s.Query(ctx, docstore.Collection("products").OrderBy("date", true))
	require.NoError(t, err)
	var got []string
	for _, d := range docs {
		var m map[string]any
		require.NoError(t, d.DataTo(&m))
		got = append(got, m["name"].(string))
	}
	assert.Equal(t, []string{"nueva", "vieja", "sin fecha"}, got)
}

func TestQuery_CampoAnidado(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.Add(ctx, "products", map[string]any{"name": "a", "warehouseStock": map[string]any{"w1": 5}})
	_, _ = s.Add(ctx, "products", map[string]any{"name": "b", "warehouseStock": map[string]any{"w2": 5}})

	docs, err := s.Query(ctx, docstore.Collection("products").Where("warehouseStock.w1", docstore.OpGreater, 0))
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

// ── Transacciones ────────────────────────────────────────────────────────────

func TestRunInTx_RollbackSiFalla(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.RunInTx(ctx, func(ctx context.Context, tx docstore.ReadWriter) error {
		_, err := tx.Add(ctx, "products", item{Name: "fantasma"})
		require.NoError(t, err)
		docs, err := tx.Query(ctx, docstore.Collection("products"))
		require.NoError(t, err)
		assert.Len(t, docs, 1, "la transacción ve sus propias escrituras")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	docs, err := s.Query(ctx, docstore.Collection("products"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRunInTx_Commit(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.RunInTx(ctx, func(ctx context.Context, tx docstore.ReadWriter) error {
		for i := 0; i < 3; i++ {
			if _, err := tx.Add(ctx, "warehouses", item{Name: "w"}); err != nil {
				return err
			}
		}
		return nil
	}))
	docs, err := s.Query(ctx, docstore.Collection("warehouses"))
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestUnique(t *testing.T) {
	ctx := context.Background()
	s := New(WithUnique("accounts", "email"))
	_, err := s.Add(ctx, "accounts", map[string]any{"email": "a@x.com"})
	require.NoError(t, err)
	_, err = s.Add(ctx, "accounts", map[string]any{"email": "a@x.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = s.Add(ctx, "accounts", map[string]any{"email": "b@x.com"})
	assert.NoError(t, err)
}

// ── Watch ────────────────────────────────────────────────────────────────────

func recv(t *testing.T, ch <-chan docstore.Snapshot) docstore.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		require.True(t, ok, "canal cerrado")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timeout esperando snapshot")
	}
	return docstore.Snapshot{}
}

func TestWatch_SnapshotInicialYCambios(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New()
	seedItems(t, s)

	ch, err := s.Watch(ctx, docstore.Collection("products").Where("stock", docstore.OpEqual, 0))
	require.NoError(t, err)

	snap := recv(t, ch)
	require.NoError(t, snap.Err)
	assert.Equal(t, []string{"Cheddar"}, names(t, snap.Docs))

	_, err = s.Add(context.Background(), "products", item{Name: "Milk", Stock: 0})
	require.NoError(t, err)

	snap = recv(t, ch)
	assert.ElementsMatch(t, []string{"Cheddar", "Milk"}, names(t, snap.Docs))
}

func TestWatch_OtraColeccionNoDispara(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := New()
	ch, err := s.Watch(ctx, docstore.Collection("products"))
	require.NoError(t, err)
	recv(t, ch)

	_, err = s.Add(context.Background(), "warehouses", item{Name: "Main"})
	require.NoError(t, err)

	select {
	case <-ch:
		t.Fatal("no se esperaba snapshot")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatch_CancelarLiberaListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New()
	ch, err := s.Watch(ctx, docstore.Collection("products"))
	require.NoError(t, err)
	recv(t, ch)
	assert.Equal(t, 1, s.Watchers("products"))

	cancel()
	assert.Eventually(t, func() bool { return s.Watchers("products") == 0 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		_, ok := <-ch
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestWatch_ConsultaInvalida(t *testing.T) {
	_, err := New().Watch(context.Background(), docstore.Collection("users/u1"))
	assert.Error(t, err)
}
