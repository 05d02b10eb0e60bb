// Package analytics contiene el tablero de KPIs de inventario.
package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	appinventory "github.com/jhoicas/greengrocer-ims/internal/application/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
	"github.com/jhoicas/greengrocer-ims/pkg/logger"
)

const recentActivitySize = 7 // filas de actividad reciente en el tablero

// Cache caché JSON versionada (Redis). Cualquier escritura en el almacén la invalida.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// Seeder siembra datos de ejemplo si el almacén está vacío.
type Seeder interface {
	SeedIfEmpty(ctx context.Context, uid string) (bool, error)
}

// DashboardUseCase genera el resumen del tablero de un usuario.
//
// Fuente de datos: snapshot completo (maestros + documentos del usuario) leído en
// paralelo; el resultado se cachea por usuario hasta la próxima escritura.
type DashboardUseCase struct {
	repos   repository.Repositories
	cache   Cache
	seeder  Seeder
	printer *message.Printer
	log     *logger.Logger
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(repos repository.Repositories, cache Cache, seeder Seeder, log *logger.Logger) *DashboardUseCase {
	return &DashboardUseCase{
		repos:   repos,
		cache:   cache,
		seeder:  seeder,
		printer: message.NewPrinter(language.English),
		log:     log,
	}
}

// GetSummary construye el DashboardDTO. La primera carga sobre un almacén vacío
// siembra los datos de ejemplo antes de calcular.
func (uc *DashboardUseCase) GetSummary(ctx context.Context, uid string) (*dto.DashboardDTO, error) {
	seeded, err := uc.seeder.SeedIfEmpty(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("dashboard: seed: %w", err)
	}
	key, err := uc.cache.BuildKey(ctx, "dashboard", uid)
	if err != nil {
		return nil, fmt.Errorf("dashboard: clave de caché: %w", err)
	}
	var out dto.DashboardDTO
	err = uc.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		uc.log.Debug().Str("uid", uid).Msg("dashboard: recalculando")
		return uc.compute(ctx, uid)
	})
	if err != nil {
		return nil, err
	}
	out.Seeded = seeded
	return &out, nil
}

func (uc *DashboardUseCase) compute(ctx context.Context, uid string) (*dto.DashboardDTO, error) {
	snap, err := appinventory.LoadSnapshot(ctx, uc.repos, uid)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	total := inventory.TotalStock(snap.Products)
	levels := inventory.CountLevels(snap.Products)

	// La actividad reciente solo mezcla recepciones, entregas y traslados.
	activity := inventory.BuildHistory(inventory.Streams{
		Receipts:   snap.Streams.Receipts,
		Deliveries: snap.Streams.Deliveries,
		Transfers:  snap.Streams.Transfers,
	}, snap.Lookups)

	return &dto.DashboardDTO{
		TotalStock:        total,
		TotalStockDisplay: uc.formatQuantity(total),
		LowStock:          levels.Low,
		OutOfStock:        levels.OutOfStock,
		PendingReceipts:   countReceipts(snap.Streams.Receipts, entity.StatusWaiting, entity.StatusReady),
		PendingDeliveries: countDeliveries(snap.Streams.Deliveries, entity.StatusWaiting, entity.StatusPacking, entity.StatusReady),
		OpenTransfers:     countOpenTransfers(snap.Streams.Transfers),
		RecentActivity:    appinventory.ToMovementDTOs(inventory.RecentActivity(activity, recentActivitySize)),
	}, nil
}

// formatQuantity ej: 2825 -> "2,825"; 12.5 -> "12.5".
func (uc *DashboardUseCase) formatQuantity(d decimal.Decimal) string {
	return uc.printer.Sprint(number.Decimal(d.InexactFloat64(), number.MaxFractionDigits(2)))
}

func countReceipts(list []*entity.Receipt, statuses ...entity.Status) int {
	n := 0
	for _, r := range list {
		if hasStatus(r.Status, statuses) {
			n++
		}
	}
	return n
}

func countDeliveries(list []*entity.DeliveryOrder, statuses ...entity.Status) int {
	n := 0
	for _, d := range list {
		if hasStatus(d.Status, statuses) {
			n++
		}
	}
	return n
}

func countOpenTransfers(list []*entity.InternalTransfer) int {
	n := 0
	for _, t := range list {
		if !t.Status.IsTerminal() {
			n++
		}
	}
	return n
}

func hasStatus(s entity.Status, set []entity.Status) bool {
	for _, x := range set {
		if s == x {
			return true
		}
	}
	return false
}
