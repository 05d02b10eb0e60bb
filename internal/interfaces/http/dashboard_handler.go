package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/greengrocer-ims/internal/application/analytics"
	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	appinventory "github.com/jhoicas/greengrocer-ims/internal/application/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/application/seed"
)

// DashboardHandler tablero, sugerencias de reorden y siembra de datos de ejemplo.
type DashboardHandler struct {
	dashboard     *appanalytics.DashboardUseCase
	replenishment *appinventory.ReplenishmentUseCase
	seeder        *seed.Seeder
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(dashboard *appanalytics.DashboardUseCase, replenishment *appinventory.ReplenishmentUseCase, seeder *seed.Seeder) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, replenishment: replenishment, seeder: seeder}
}

// GetSummary devuelve los KPIs del usuario. Sobre un almacén vacío siembra
// primero los datos de ejemplo (seeded=true en la respuesta).
// @Summary      Resumen del tablero
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardDTO
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.dashboard.GetSummary(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// Reordering godoc
// @Summary      Productos en o bajo su nivel de reorden
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ListResponse[dto.ReorderSuggestionDTO]
// @Router       /api/reordering [get]
func (h *DashboardHandler) Reordering(c *fiber.Ctx) error {
	items, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewList(items))
}

// Seed godoc
// @Summary      Sembrar datos de ejemplo si no hay productos
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SeedResponse
// @Router       /api/seed [post]
func (h *DashboardHandler) Seed(c *fiber.Ctx) error {
	seeded, err := h.seeder.SeedIfEmpty(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.SeedResponse{Seeded: seeded})
}
