package http

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/greengrocer-ims/internal/application/live"
	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/memstore"
)

func TestResolveLivePath(t *testing.T) {
	cases := map[string]string{
		"products":            "products",
		"/products/":          "products",
		"me/deliveries":       "users/u1/deliveryOrders",
		"me/transfers":        "users/u1/internalTransfers",
		"me/receipts":         "users/u1/receipts",
		"me/stockAdjustments": "users/u1/stockAdjustments",
		"users/otro/receipts": "users/otro/receipts",
	}
	for raw, want := range cases {
		assert.Equal(t, want, resolveLivePath("u1", raw), raw)
	}
}

func TestParseLiveQuery(t *testing.T) {
	q, err := parseLiveQuery("products", []string{"stock:>=:10", "sku:in:[\"A\",\"B\"]", "name:==:Kiwi"}, "name:desc", "5")
	require.NoError(t, err)
	require.Len(t, q.Filters, 3)
	assert.Equal(t, docstore.Filter{Field: "stock", Op: docstore.OpGreaterEq, Value: float64(10)}, q.Filters[0])
	assert.Equal(t, []any{"A", "B"}, q.Filters[1].Value)
	assert.Equal(t, "Kiwi", q.Filters[2].Value, "lo que no es JSON se toma como texto")
	assert.Equal(t, []docstore.Order{{Field: "name", Desc: true}}, q.Orders)
	assert.Equal(t, 5, q.Max)

	q, err = parseLiveQuery("products", nil, "name", "")
	require.NoError(t, err)
	assert.False(t, q.Orders[0].Desc)
	assert.Zero(t, q.Max)
}

func TestParseLiveQuery_Errores(t *testing.T) {
	cases := []struct {
		name    string
		where   []string
		orderBy string
		limit   string
	}{
		{"where incompleto", []string{"stock:>="}, "", ""},
		{"operador desconocido", []string{"stock:~:1"}, "", ""},
		{"in sin lista", []string{"sku:in:A"}, "", ""},
		{"dirección inválida", nil, "name:sideways", ""},
		{"límite negativo", nil, "", "-1"},
		{"límite no numérico", nil, "", "diez"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseLiveQuery("products", tc.where, tc.orderBy, tc.limit)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	require.NoError(t, writeSSE(w, &liveEvent{Records: []string{}, Loading: true}))
	require.NoError(t, writeSSE(w, nil))
	require.NoError(t, writeSSE(w, &liveEvent{Records: []string{}, Error: nil}))

	assert.Equal(t,
		"event: snapshot\ndata: {\"records\":[],\"loading\":true}\n\n"+
			": ping\n\n"+
			"event: snapshot\ndata: {\"records\":[],\"loading\":false}\n\n",
		buf.String())
}

func TestRunSubscription_EntregaSnapshots(t *testing.T) {
	store := memstore.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := store.Add(ctx, docstore.Products, &entity.Product{Name: "Kiwi", SKU: "FR-KIW-001"})
	require.NoError(t, err)

	var events []*liveEvent
	runSubscription[entity.Product, *entity.Product](ctx, store, live.NewErrorBus(), docstore.Collection(docstore.Products), time.Hour, func(ev *liveEvent) error {
		events = append(events, ev)
		if ev != nil && !ev.Loading {
			cancel()
		}
		return nil
	})

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Nil(t, last.Error)
	records, ok := last.Records.([]*entity.Product)
	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, "Kiwi", records[0].Name)
	assert.NotEmpty(t, records[0].ID)
}

func TestRunSubscription_ErrorCierraElStream(t *testing.T) {
	store := docstore.ForUser(memstore.New(), "u1")
	bus := live.NewErrorBus()
	published, unsubscribe := bus.Subscribe(4)
	defer unsubscribe()

	var events []*liveEvent
	runSubscription[entity.Receipt, *entity.Receipt](context.Background(), store, bus, docstore.Collection("users/u2/receipts"), time.Hour, func(ev *liveEvent) error {
		events = append(events, ev)
		return nil
	})

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	require.NotNil(t, last.Error)
	assert.Equal(t, "PERMISSION_DENIED", last.Error.Code)

	select {
	case e := <-published:
		assert.Equal(t, "users/u2/receipts", e.Path)
	case <-time.After(time.Second):
		t.Fatal("el error no se publicó en el bus")
	}
}

type failingWatcher struct{ err error }

func (w failingWatcher) Watch(context.Context, *docstore.Query) (<-chan docstore.Snapshot, error) {
	return nil, w.err
}

func TestRunSubscription_ErrorInternoNoExponeDetalle(t *testing.T) {
	cause := errors.New(`pq: relation "documents" does not exist at 10.0.0.5:5432`)
	bus := live.NewErrorBus()
	published, unsubscribe := bus.Subscribe(4)
	defer unsubscribe()

	var events []*liveEvent
	runSubscription[entity.Product, *entity.Product](context.Background(), failingWatcher{err: cause}, bus, docstore.Collection(docstore.Products), time.Hour, func(ev *liveEvent) error {
		events = append(events, ev)
		return nil
	})

	require.NotEmpty(t, events)
	last := events[len(events)-1]
	require.NotNil(t, last.Error)
	assert.Equal(t, "INTERNAL", last.Error.Code)
	assert.Equal(t, internalErrorMessage, last.Error.Message)
	assert.NotContains(t, last.Error.Message, "10.0.0.5")

	select {
	case e := <-published:
		assert.ErrorIs(t, e.Err, cause, "la causa completa se publica en el bus")
	case <-time.After(time.Second):
		t.Fatal("el error no se publicó en el bus")
	}
}

func TestRunSubscription_ErrorDeDominioConservaMensaje(t *testing.T) {
	cause := fmt.Errorf("where: campo vacío: %w", domain.ErrInvalidInput)
	var last *liveEvent
	runSubscription[entity.Product, *entity.Product](context.Background(), failingWatcher{err: cause}, live.NewErrorBus(), docstore.Collection(docstore.Products), time.Hour, func(ev *liveEvent) error {
		last = ev
		return nil
	})
	require.NotNil(t, last)
	require.NotNil(t, last.Error)
	assert.Equal(t, "VALIDATION", last.Error.Code)
	assert.Contains(t, last.Error.Message, "campo vacío")
}
