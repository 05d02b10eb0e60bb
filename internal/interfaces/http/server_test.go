package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/jhoicas/greengrocer-ims/internal/application/analytics"
	"github.com/jhoicas/greengrocer-ims/internal/application/auth"
	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	appinventory "github.com/jhoicas/greengrocer-ims/internal/application/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/application/live"
	"github.com/jhoicas/greengrocer-ims/internal/application/seed"
	"github.com/jhoicas/greengrocer-ims/internal/application/usecase"
	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/documents"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/memstore"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/metrics"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/pdf"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/redisstore"
	apphttp "github.com/jhoicas/greengrocer-ims/internal/interfaces/http"
	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Servidor de prueba: memstore + miniredis + todos los casos de uso reales
// ──────────────────────────────────────────────────────────────────────────────

type nopQueue struct{}

func (nopQueue) EnqueuePasswordReset(context.Context, string, string, string) error { return nil }

func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := logger.Nop()
	cache := redisstore.NewCache(client, time.Minute)
	base := memstore.New(memstore.WithUnique(docstore.Accounts, "email"))
	store := docstore.WithCommitHook(base, func(ctx context.Context, _ []string) { _ = cache.Bump(ctx) })

	repos := documents.NewRepositories(store)
	uow := documents.NewUnitOfWork(store)
	seeder := seed.NewSeeder(uow, log)
	authUC := auth.NewAuthUseCase(
		documents.NewAccountRepository(store),
		redisstore.NewSessionStore(client),
		nopQueue{},
		auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer},
		"http://localhost:3000/reset-password",
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(requestid.New())
	app.Use(apphttp.RequestLogger(log))
	apphttp.Router(app, apphttp.RouterDeps{
		Base:          ctx,
		ProductUC:     usecase.NewProductUseCase(repos.Products),
		WarehouseUC:   usecase.NewWarehouseUseCase(repos.Warehouses),
		SupplierUC:    usecase.NewSupplierUseCase(repos.Suppliers),
		CustomerUC:    usecase.NewCustomerUseCase(repos.Customers),
		CategoryUC:    usecase.NewCategoryUseCase(repos.Categories),
		OperationsUC:  appinventory.NewOperationsUseCase(uow, repos),
		Replenishment: appinventory.NewReplenishmentUseCase(repos.Products),
		HistoryUC:     appinventory.NewHistoryUseCase(repos),
		DashboardUC:   appanalytics.NewDashboardUseCase(repos, cache, seeder, log),
		Seeder:        seeder,
		AuthUC:        authUC,
		PDF:           pdf.NewMarotoPDFGenerator(),
		Store:         store,
		ErrorBus:      live.NewErrorBus(),
		Metrics:       metrics.New(),
		AuthRateLimit: 1000,
	})
	return app
}

// call ejecuta la petición y devuelve estado y cuerpo.
func call(t *testing.T, app *fiber.App, method, target, token string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func signUp(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/auth/signup", "", dto.SignUpRequest{Email: email, Password: "secreto1", DisplayName: "Ana"})
	require.Equal(t, http.StatusCreated, status, string(body))
	return decode[dto.AuthResponse](t, body).Token
}

// seeded siembra vía dashboard y devuelve los maestros sembrados.
type seededData struct {
	products   []dto.ProductResponse
	warehouses []dto.WarehouseResponse
	suppliers  []dto.SupplierResponse
	customers  []dto.CustomerResponse
}

func seedViaDashboard(t *testing.T, app *fiber.App, token string) seededData {
	t.Helper()
	status, body := call(t, app, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	require.True(t, decode[dto.DashboardDTO](t, body).Seeded)

	var d seededData
	_, body = call(t, app, http.MethodGet, "/api/products", token, nil)
	d.products = decode[dto.ListResponse[dto.ProductResponse]](t, body).Items
	_, body = call(t, app, http.MethodGet, "/api/warehouses", token, nil)
	d.warehouses = decode[dto.ListResponse[dto.WarehouseResponse]](t, body).Items
	_, body = call(t, app, http.MethodGet, "/api/suppliers", token, nil)
	d.suppliers = decode[dto.ListResponse[dto.SupplierResponse]](t, body).Items
	_, body = call(t, app, http.MethodGet, "/api/customers", token, nil)
	d.customers = decode[dto.ListResponse[dto.CustomerResponse]](t, body).Items
	return d
}

func (d seededData) product(t *testing.T, sku string) dto.ProductResponse {
	t.Helper()
	for _, p := range d.products {
		if p.SKU == sku {
			return p
		}
	}
	t.Fatalf("producto %s no sembrado", sku)
	return dto.ProductResponse{}
}

func (d seededData) warehouse(t *testing.T, name string) string {
	t.Helper()
	for _, w := range d.warehouses {
		if w.Name == name {
			return w.ID
		}
	}
	t.Fatalf("bodega %s no sembrada", name)
	return ""
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuth_SignUpMeSignOut(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "ana@example.com")

	status, body := call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ana@example.com", decode[dto.AccountResponse](t, body).Email)

	status, _ = call(t, app, http.MethodPost, "/api/auth/signout", token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = call(t, app, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status, "el token revocado ya no sirve")
}

func TestAuth_ErroresDeEntrada(t *testing.T) {
	app := newTestServer(t)
	signUp(t, app, "ana@example.com")

	status, body := call(t, app, http.MethodPost, "/api/auth/signup", "", dto.SignUpRequest{Email: "ana@example.com", Password: "secreto1"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "EMAIL_EXISTS", decode[dto.ErrorResponse](t, body).Code)

	status, body = call(t, app, http.MethodPost, "/api/auth/signup", "", dto.SignUpRequest{Email: "no-es-email", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, status)
	errResp := decode[dto.ErrorResponse](t, body)
	assert.Equal(t, "VALIDATION", errResp.Code)
	assert.Contains(t, errResp.Message, "email")

	status, body = call(t, app, http.MethodPost, "/api/auth/signin", "", dto.SignInRequest{Email: "ana@example.com", Password: "incorrecta"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", decode[dto.ErrorResponse](t, body).Code)

	status, _ = call(t, app, http.MethodPost, "/api/auth/password-reset", "", dto.PasswordResetRequest{Email: "nadie@example.com"})
	assert.Equal(t, http.StatusAccepted, status, "no revela si la cuenta existe")

	status, _ = call(t, app, http.MethodPost, "/api/auth/password-reset/confirm", "", dto.PasswordResetConfirmRequest{Token: "x", NewPassword: "nueva123"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAuth_RutasProtegidasSinToken(t *testing.T) {
	app := newTestServer(t)
	status, body := call(t, app, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_TOKEN", decode[dto.ErrorResponse](t, body).Code)

	for _, path := range []string{"/api/dashboard", "/api/history", "/api/live/products"} {
		status, _ = call(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}
}

func TestRutaDesconocida_Devuelve404(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "ana@example.com")

	for _, tok := range []string{"", token} {
		status, body := call(t, app, http.MethodGet, "/api/does-not-exist", tok, nil)
		assert.Equal(t, http.StatusNotFound, status, "token=%q", tok)
		assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, body).Code)
	}

	status, _ := call(t, app, http.MethodDelete, "/api/dashboard/extra", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Maestros
// ──────────────────────────────────────────────────────────────────────────────

func TestProducts_CRUDYNiveles(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "ana@example.com")

	in := map[string]any{"name": "Kiwi", "sku": "FR-KIW-001", "unitOfMeasure": "kg"}
	status, body := call(t, app, http.MethodPost, "/api/products", token, in)
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode[dto.ProductResponse](t, body)
	assert.Equal(t, "10", created.ReorderLevel.String(), "nivel de reorden por defecto")
	assert.Equal(t, "out_of_stock", created.Level)

	status, body = call(t, app, http.MethodPost, "/api/products", token, in)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, body).Code)

	status, _ = call(t, app, http.MethodPost, "/api/products", token, map[string]any{"sku": "X"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, app, http.MethodGet, "/api/products?level=out", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decode[dto.ListResponse[dto.ProductResponse]](t, body).Total)

	status, _ = call(t, app, http.MethodGet, "/api/products?level=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, app, http.MethodPut, "/api/products/"+created.ID, token, map[string]any{"name": "Kiwi Gold"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Kiwi Gold", decode[dto.ProductResponse](t, body).Name)

	status, _ = call(t, app, http.MethodDelete, "/api/products/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, body = call(t, app, http.MethodGet, "/api/products/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, body).Code)
}

func TestWarehousesYSocios_CRUD(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "ana@example.com")

	status, body := call(t, app, http.MethodPost, "/api/warehouses", token, dto.CreateWarehouseRequest{Name: "Norte", Capacity: 100})
	require.Equal(t, http.StatusCreated, status, string(body))
	wh := decode[dto.WarehouseResponse](t, body)

	status, _ = call(t, app, http.MethodGet, "/api/warehouses/"+wh.ID, token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodPost, "/api/suppliers", token, dto.SupplierRequest{Name: "Frutas SA", ContactEmail: "mal"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, app, http.MethodPost, "/api/categories", token, dto.CategoryRequest{Name: "Fruits"})
	require.Equal(t, http.StatusCreated, status)
	cat := decode[dto.CategoryResponse](t, body)
	status, body = call(t, app, http.MethodPut, "/api/categories/"+cat.ID, token, dto.CategoryRequest{Name: "Frutas"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Frutas", decode[dto.CategoryResponse](t, body).Name)

	status, _ = call(t, app, http.MethodDelete, "/api/customers/no-existe", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Operaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestReceipt_FlujoPorHTTP(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "ana@example.com")
	d := seedViaDashboard(t, app, token)
	tomatoes := d.product(t, "VG-TOM-001")
	mainID := d.warehouse(t, "Main Warehouse")

	status, body := call(t, app, http.MethodPost, "/api/receipts", token, map[string]any{
		"supplierId": d.suppliers[0].ID,
		"lines":      []map[string]any{{"productId": tomatoes.ID, "warehouseId": mainID, "quantity": 50}},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	receipt := decode[dto.ReceiptResponse](t, body)
	assert.Equal(t, "Draft", receipt.Status)
	assert.True(t, strings.HasPrefix(receipt.Reference, "RCP-"))

	status, body = call(t, app, http.MethodPost, "/api/receipts/"+receipt.ID+"/actions/ready", token, nil)
	assert.Equal(t, http.StatusConflict, status, "ready exige Waiting")
	assert.Equal(t, "INVALID_TRANSITION", decode[dto.ErrorResponse](t, body).Code)

	for _, action := range []string{"confirm", "ready", "validate"} {
		status, body = call(t, app, http.MethodPost, "/api/receipts/"+receipt.ID+"/actions/"+action, token, nil)
		require.Equal(t, http.StatusOK, status, action+": "+string(body))
	}
	assert.Equal(t, "Done", decode[dto.ReceiptResponse](t, body).Status)

	_, body = call(t, app, http.MethodGet, "/api/products/"+tomatoes.ID, token, nil)
	assert.Equal(t, "300", decode[dto.ProductResponse](t, body).Stock.String())

	status, body = call(t, app, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "2875", decode[dto.DashboardDTO](t, body).TotalStock.String(), "la escritura invalida la caché")
}

func TestDelivery_StockInsuficiente(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "ana@example.com")
	d := seedViaDashboard(t, app, token)
	cheese := d.product(t, "DR-CHS-001")

	status, body := call(t, app, http.MethodPost, "/api/deliveries", token, map[string]any{
		"customerId": d.customers[0].ID,
		"lines":      []map[string]any{{"productId": cheese.ID, "warehouseId": d.warehouse(t, "Main Warehouse"), "quantity": 500}},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	delivery := decode[dto.DeliveryResponse](t, body)

	for _, action := range []string{"pick", "pack"} {
		status, _ = call(t, app, http.MethodPost, "/api/deliveries/"+delivery.ID+"/actions/"+action, token, nil)
		require.Equal(t, http.StatusOK, status)
	}
	status, body = call(t, app, http.MethodPost, "/api/deliveries/"+delivery.ID+"/actions/validate", token, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, body).Code)

	_, body = call(t, app, http.MethodGet, "/api/deliveries/"+delivery.ID, token, nil)
	assert.Equal(t, "Ready", decode[dto.DeliveryResponse](t, body).Status, "el fallo no avanza el estado")
}

func TestTransfer_MismaBodegaYAjuste(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "ana@example.com")
	d := seedViaDashboard(t, app, token)
	bananas := d.product(t, "FR-BAN-001")
	mainID := d.warehouse(t, "Main Warehouse")

	status, body := call(t, app, http.MethodPost, "/api/transfers", token, map[string]any{
		"fromWarehouseId": mainID, "toWarehouseId": mainID, "productId": bananas.ID, "quantity": 5,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, body).Code)

	status, body = call(t, app, http.MethodPost, "/api/adjustments", token, map[string]any{
		"warehouseId": mainID, "productId": bananas.ID, "countedQuantity": 1490, "reason": "conteo",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	adj := decode[dto.AdjustmentResponse](t, body)
	assert.Equal(t, "1500", adj.PreviousQuantity.String())
	assert.Equal(t, "-10", adj.Difference.String())

	status, body = call(t, app, http.MethodGet, "/api/adjustments", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decode[dto.ListResponse[dto.AdjustmentResponse]](t, body).Total)
}

func TestOperaciones_AisladasPorUsuario(t *testing.T) {
	app := newTestServer(t)
	ana := signUp(t, app, "ana@example.com")
	seedViaDashboard(t, app, ana)
	beto := signUp(t, app, "beto@example.com")

	_, body := call(t, app, http.MethodGet, "/api/receipts", ana, nil)
	receipts := decode[dto.ListResponse[dto.ReceiptResponse]](t, body)
	require.Equal(t, 1, receipts.Total)

	status, _ := call(t, app, http.MethodGet, "/api/receipts/"+receipts.Items[0].ID, beto, nil)
	assert.Equal(t, http.StatusNotFound, status)
	_, body = call(t, app, http.MethodGet, "/api/receipts", beto, nil)
	assert.Equal(t, 0, decode[dto.ListResponse[dto.ReceiptResponse]](t, body).Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Agregados
// ──────────────────────────────────────────────────────────────────────────────

func TestSeed_YReordering(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "ana@example.com")

	status, body := call(t, app, http.MethodPost, "/api/seed", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[dto.SeedResponse](t, body).Seeded)
	_, body = call(t, app, http.MethodPost, "/api/seed", token, nil)
	assert.False(t, decode[dto.SeedResponse](t, body).Seeded)

	status, body = call(t, app, http.MethodGet, "/api/reordering", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, decode[dto.ListResponse[dto.ReorderSuggestionDTO]](t, body).Total)
}

func TestHistory_FiltrosYPDF(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "ana@example.com")
	seedViaDashboard(t, app, token)

	status, body := call(t, app, http.MethodGet, "/api/history", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, decode[dto.ListResponse[dto.MovementDTO]](t, body).Total)

	status, body = call(t, app, http.MethodGet, "/api/history?type=Transfer", token, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[dto.ListResponse[dto.MovementDTO]](t, body)
	require.Equal(t, 1, list.Total)
	assert.True(t, strings.HasPrefix(list.Items[0].Reference, "TRF-"))

	status, _ = call(t, app, http.MethodGet, "/api/history?type=Bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	req := httptest.NewRequest(http.MethodGet, "/api/history/export.pdf?status=Waiting", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
}

// ──────────────────────────────────────────────────────────────────────────────
// Live
// ──────────────────────────────────────────────────────────────────────────────

func TestLive_ColeccionAjenaEmiteErrorYCierra(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "ana@example.com")

	status, body := call(t, app, http.MethodGet, "/api/live/users/otro/receipts", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "event: error")
	assert.Contains(t, string(body), "PERMISSION_DENIED")
}

func TestLive_PeticionesInvalidas(t *testing.T) {
	app := newTestServer(t)
	token := signUp(t, app, "ana@example.com")

	status, _ := call(t, app, http.MethodGet, "/api/live/accounts", token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := call(t, app, http.MethodGet, "/api/live/products?where=stock", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, body).Code)

	status, _ = call(t, app, http.MethodGet, "/api/live/products?limit=-1", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
