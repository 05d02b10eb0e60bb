package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	appinventory "github.com/jhoicas/greengrocer-ims/internal/application/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/domain/inventory"
	"github.com/jhoicas/greengrocer-ims/internal/infrastructure/pdf"
)

// HistoryPDFGenerator genera el reporte PDF del historial (lo implementa *pdf.MarotoPDFGenerator).
type HistoryPDFGenerator interface {
	GenerateHistoryPDF(ctx context.Context, r pdf.HistoryReport) ([]byte, error)
}

// HistoryHandler historial unificado de movimientos y su exportación.
type HistoryHandler struct {
	uc  *appinventory.HistoryUseCase
	pdf HistoryPDFGenerator
}

// NewHistoryHandler construye el handler.
func NewHistoryHandler(uc *appinventory.HistoryUseCase, gen HistoryPDFGenerator) *HistoryHandler {
	return &HistoryHandler{uc: uc, pdf: gen}
}

// List godoc
// @Summary      Historial de movimientos
// @Tags         history
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Referencia, producto o entidad relacionada"
// @Param        type    query  string  false  "Receipt, Delivery, Transfer, Adjustment o all"
// @Param        status  query  string  false  "Estado o all"
// @Success      200     {object}  dto.ListResponse[dto.MovementDTO]
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/history [get]
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	_, movements, err := h.load(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewList(appinventory.ToMovementDTOs(movements)))
}

// ExportPDF godoc
// @Summary      Exportar el historial filtrado a PDF
// @Tags         history
// @Security     Bearer
// @Produce      application/pdf
// @Param        search  query  string  false  "Referencia, producto o entidad relacionada"
// @Param        type    query  string  false  "Tipo"
// @Param        status  query  string  false  "Estado"
// @Success      200
// @Router       /api/history/export.pdf [get]
func (h *HistoryHandler) ExportPDF(c *fiber.Ctx) error {
	q, movements, err := h.load(c)
	if err != nil {
		return writeError(c, err)
	}
	owner := GetUserID(c)
	if claims := GetClaims(c); claims != nil && claims.Email != "" {
		owner = claims.Email
	}
	now := time.Now()
	doc, err := h.pdf.GenerateHistoryPDF(c.UserContext(), pdf.HistoryReport{
		Owner:       owner,
		GeneratedAt: now,
		Filter:      inventory.HistoryFilter{Search: q.Search, Type: q.Type, Status: q.Status},
		Movements:   movements,
	})
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="history-%s.pdf"`, now.Format("20060102-150405")))
	return c.Send(doc)
}

func (h *HistoryHandler) load(c *fiber.Ctx) (dto.HistoryQuery, []inventory.Movement, error) {
	var q dto.HistoryQuery
	if err := bindQuery(c, &q); err != nil {
		return q, nil, err
	}
	movements, err := h.uc.List(c.UserContext(), GetUserID(c), q)
	return q, movements, err
}
