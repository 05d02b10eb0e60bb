package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	"github.com/jhoicas/greengrocer-ims/internal/application/live"
	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
)

const defaultKeepAlive = 15 * time.Second

// SubscriptionGauge lleva la cuenta de streams abiertos (lo implementa *metrics.Metrics).
type SubscriptionGauge interface {
	SubscriptionOpened(collection string)
	SubscriptionClosed(collection string)
}

// liveEvent carga de cada evento SSE: el estado completo de la suscripción.
type liveEvent struct {
	Records any                `json:"records"`
	Loading bool               `json:"loading"`
	Error   *dto.ErrorResponse `json:"error,omitempty"`
}

type emitFunc func(ev *liveEvent) error

type subscriptionRunner func(ctx context.Context, watcher docstore.Watcher, bus *live.ErrorBus, q *docstore.Query, keepAlive time.Duration, emit emitFunc)

// runners colecciones observables por nombre (último segmento de la ruta).
var runners = map[string]subscriptionRunner{
	docstore.Products:          runSubscription[entity.Product, *entity.Product],
	docstore.Warehouses:        runSubscription[entity.Warehouse, *entity.Warehouse],
	docstore.Suppliers:         runSubscription[entity.Supplier, *entity.Supplier],
	docstore.Customers:         runSubscription[entity.Customer, *entity.Customer],
	docstore.Categories:        runSubscription[entity.Category, *entity.Category],
	docstore.Receipts:          runSubscription[entity.Receipt, *entity.Receipt],
	docstore.DeliveryOrders:    runSubscription[entity.DeliveryOrder, *entity.DeliveryOrder],
	docstore.InternalTransfers: runSubscription[entity.InternalTransfer, *entity.InternalTransfer],
	docstore.StockAdjustments:  runSubscription[entity.StockAdjustment, *entity.StockAdjustment],
}

// Alias cortos de las subcolecciones del usuario (me/deliveries -> users/{uid}/deliveryOrders).
var userAliases = map[string]string{
	"receipts":    docstore.Receipts,
	"deliveries":  docstore.DeliveryOrders,
	"transfers":   docstore.InternalTransfers,
	"adjustments": docstore.StockAdjustments,
}

// LiveHandler expone suscripciones del almacén como Server-Sent Events.
type LiveHandler struct {
	store     docstore.Store
	bus       *live.ErrorBus
	base      context.Context
	gauge     SubscriptionGauge
	keepAlive time.Duration
}

// NewLiveHandler construye el handler. base acota la vida de todos los streams
// (se cancela al apagar el servidor).
func NewLiveHandler(base context.Context, store docstore.Store, bus *live.ErrorBus, gauge SubscriptionGauge) *LiveHandler {
	return &LiveHandler{store: store, bus: bus, base: base, gauge: gauge, keepAlive: defaultKeepAlive}
}

// Stream godoc
// @Summary      Suscripción en vivo a una colección (SSE)
// @Description  Cada evento "snapshot" trae el conjunto completo de registros; un evento "error" cierra el stream.
// @Tags         live
// @Security     Bearer
// @Produce      text/event-stream
// @Param        collection  path   string  true   "products, me/receipts, me/deliveries..."
// @Param        where       query  string  false  "field:op:value (repetible)"
// @Param        orderBy     query  string  false  "field[:desc]"
// @Param        limit       query  int     false  "Máximo de registros"
// @Router       /api/live/{collection} [get]
func (h *LiveHandler) Stream(c *fiber.Ctx) error {
	uid := GetUserID(c)
	path := resolveLivePath(uid, strings.Clone(c.Params("*")))
	name := path[strings.LastIndex(path, "/")+1:]
	run, ok := runners[name]
	if !ok {
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", fmt.Sprintf("colección %q no observable", path))
	}

	var where []string
	for _, raw := range c.Context().QueryArgs().PeekMulti("where") {
		where = append(where, string(raw))
	}
	q, err := parseLiveQuery(path, where, strings.Clone(c.Query("orderBy")), c.Query("limit"))
	if err != nil {
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	watcher := docstore.ForUser(h.store, uid)
	log := requestLogger(c)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(h.base)
		defer cancel()
		if h.gauge != nil {
			h.gauge.SubscriptionOpened(name)
			defer h.gauge.SubscriptionClosed(name)
		}
		log.Debug().Str("query", q.Key()).Msg("live: stream abierto")
		run(ctx, watcher, h.bus, q, h.keepAlive, func(ev *liveEvent) error {
			return writeSSE(w, ev)
		})
		log.Debug().Str("query", q.Key()).Msg("live: stream cerrado")
	})
	return nil
}

// runSubscription publica cada estado de la suscripción hasta que ctx termine,
// el cliente se desconecte (falla la escritura) o llegue un error.
func runSubscription[T any, P docstore.Identifiable[T]](ctx context.Context, watcher docstore.Watcher, bus *live.ErrorBus, q *docstore.Query, keepAlive time.Duration, emit emitFunc) {
	sub := live.NewSubscription[T, P](watcher, bus)
	defer sub.Close()
	sub.Bind(ctx, q)

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := emit(nil); err != nil {
				return
			}
		case st, ok := <-sub.Changes():
			if !ok {
				return
			}
			ev := &liveEvent{Records: st.Records, Loading: st.Loading}
			if st.Err != nil {
				// La causa completa va al bus de errores; el cliente recibe el mismo cuerpo que en HTTP.
				resp := errorResponse(st.Err)
				ev.Error = &resp
			}
			if err := emit(ev); err != nil || st.Err != nil {
				return
			}
		}
	}
}

// writeSSE escribe un evento (o un comentario de keep-alive si ev es nil) y hace flush.
func writeSSE(w *bufio.Writer, ev *liveEvent) error {
	if ev == nil {
		if _, err := w.WriteString(": ping\n\n"); err != nil {
			return err
		}
		return w.Flush()
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	name := "snapshot"
	if ev.Error != nil {
		name = "error"
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, raw); err != nil {
		return err
	}
	return w.Flush()
}

// resolveLivePath traduce me/... a users/{uid}/...; el resto se usa tal cual y
// el control de acceso queda a cargo de docstore.ForUser.
func resolveLivePath(uid, raw string) string {
	p := docstore.Clean(raw)
	if rest, ok := strings.CutPrefix(p, "me/"); ok {
		if alias, ok := userAliases[rest]; ok {
			rest = alias
		}
		return docstore.UserCollection(uid, rest)
	}
	return p
}

// parseLiveQuery arma la consulta desde where=field:op:value (repetible),
// orderBy=field[:desc] y limit=n. El valor se interpreta como JSON si es válido
// (números, booleanos, listas para "in") y si no como texto.
func parseLiveQuery(path string, where []string, orderBy, limit string) (*docstore.Query, error) {
	q := docstore.Collection(path)
	for _, w := range where {
		parts := strings.SplitN(w, ":", 3)
		if len(parts) != 3 || parts[0] == "" {
			return nil, fmt.Errorf("where %q: se espera field:op:value: %w", w, domain.ErrInvalidInput)
		}
		op, err := docstore.ParseOp(parts[1])
		if err != nil {
			return nil, fmt.Errorf("where %q: %v: %w", w, err, domain.ErrInvalidInput)
		}
		q = q.Where(parts[0], op, parseValue(parts[2]))
	}
	if orderBy != "" {
		field, dir, _ := strings.Cut(orderBy, ":")
		switch strings.ToLower(dir) {
		case "", "asc":
			q = q.OrderBy(field, false)
		case "desc":
			q = q.OrderBy(field, true)
		default:
			return nil, fmt.Errorf("orderBy %q: %w", orderBy, domain.ErrInvalidInput)
		}
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("limit %q: %w", limit, domain.ErrInvalidInput)
		}
		q = q.Limit(n)
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInvalidInput)
	}
	return q, nil
}

func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}
