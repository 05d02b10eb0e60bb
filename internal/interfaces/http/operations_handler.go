package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	appinventory "github.com/jhoicas/greengrocer-ims/internal/application/inventory"
)

// OperationRecorder cuenta las acciones aplicadas (lo implementa *metrics.Metrics).
type OperationRecorder interface {
	StockOperation(kind, action string)
}

// OperationsHandler recepciones, entregas, traslados y ajustes del usuario autenticado.
type OperationsHandler struct {
	uc       *appinventory.OperationsUseCase
	recorder OperationRecorder
}

// NewOperationsHandler construye el handler.
func NewOperationsHandler(uc *appinventory.OperationsUseCase, recorder OperationRecorder) *OperationsHandler {
	return &OperationsHandler{uc: uc, recorder: recorder}
}

func (h *OperationsHandler) record(kind, action string) {
	if h.recorder != nil {
		h.recorder.StockOperation(kind, action)
	}
}

// ── Recepciones ───────────────────────────────────────────────────────────────

// CreateReceipt godoc
// @Summary      Crear recepción (Draft)
// @Tags         receipts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceiptRequest  true  "Proveedor, fecha y líneas"
// @Success      201   {object}  dto.ReceiptResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
func (h *OperationsHandler) CreateReceipt(c *fiber.Ctx) error {
	var in dto.CreateReceiptRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateReceipt(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	h.record("receipt", "create")
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *OperationsHandler) GetReceipt(c *fiber.Ctx) error {
	out, err := h.uc.GetReceipt(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *OperationsHandler) ListReceipts(c *fiber.Ctx) error {
	items, err := h.uc.ListReceipts(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewList(items))
}

// ReceiptAction godoc
// @Summary      Aplicar acción de flujo (confirm, ready, validate, cancel)
// @Tags         receipts
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la recepción"
// @Param        action  path  string  true  "Acción"
// @Success      200     {object}  dto.ReceiptResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/receipts/{id}/actions/{action} [post]
func (h *OperationsHandler) ReceiptAction(c *fiber.Ctx) error {
	action := c.Params("action")
	out, err := h.uc.ReceiptAction(c.UserContext(), GetUserID(c), c.Params("id"), action)
	if err != nil {
		return writeError(c, err)
	}
	h.record("receipt", action)
	return c.JSON(out)
}

// ── Entregas ──────────────────────────────────────────────────────────────────

// CreateDelivery godoc
// @Summary      Crear orden de entrega (Draft)
// @Tags         deliveries
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDeliveryRequest  true  "Cliente, fecha y líneas"
// @Success      201   {object}  dto.DeliveryResponse
// @Router       /api/deliveries [post]
func (h *OperationsHandler) CreateDelivery(c *fiber.Ctx) error {
	var in dto.CreateDeliveryRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateDelivery(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	h.record("delivery", "create")
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *OperationsHandler) GetDelivery(c *fiber.Ctx) error {
	out, err := h.uc.GetDelivery(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *OperationsHandler) ListDeliveries(c *fiber.Ctx) error {
	items, err := h.uc.ListDeliveries(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewList(items))
}

// DeliveryAction godoc
// @Summary      Aplicar acción de flujo (pick, pack, validate, cancel)
// @Tags         deliveries
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la entrega"
// @Param        action  path  string  true  "Acción"
// @Success      200     {object}  dto.DeliveryResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/deliveries/{id}/actions/{action} [post]
func (h *OperationsHandler) DeliveryAction(c *fiber.Ctx) error {
	action := c.Params("action")
	out, err := h.uc.DeliveryAction(c.UserContext(), GetUserID(c), c.Params("id"), action)
	if err != nil {
		return writeError(c, err)
	}
	h.record("delivery", action)
	return c.JSON(out)
}

// ── Traslados ─────────────────────────────────────────────────────────────────

// CreateTransfer godoc
// @Summary      Crear traslado interno (Draft)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Origen, destino, producto y cantidad"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *OperationsHandler) CreateTransfer(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateTransfer(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	h.record("transfer", "create")
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *OperationsHandler) GetTransfer(c *fiber.Ctx) error {
	out, err := h.uc.GetTransfer(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *OperationsHandler) ListTransfers(c *fiber.Ctx) error {
	items, err := h.uc.ListTransfers(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewList(items))
}

// TransferAction godoc
// @Summary      Aplicar acción de flujo (confirm, ready, validate, cancel)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID del traslado"
// @Param        action  path  string  true  "Acción"
// @Success      200     {object}  dto.TransferResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/actions/{action} [post]
func (h *OperationsHandler) TransferAction(c *fiber.Ctx) error {
	action := c.Params("action")
	out, err := h.uc.TransferAction(c.UserContext(), GetUserID(c), c.Params("id"), action)
	if err != nil {
		return writeError(c, err)
	}
	h.record("transfer", action)
	return c.JSON(out)
}

// ── Ajustes ───────────────────────────────────────────────────────────────────

// CreateAdjustment godoc
// @Summary      Registrar ajuste por conteo físico
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "Bodega, producto y cantidad contada"
// @Success      201   {object}  dto.AdjustmentResponse
// @Router       /api/adjustments [post]
func (h *OperationsHandler) CreateAdjustment(c *fiber.Ctx) error {
	var in dto.CreateAdjustmentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateAdjustment(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	h.record("adjustment", "create")
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *OperationsHandler) ListAdjustments(c *fiber.Ctx) error {
	items, err := h.uc.ListAdjustments(c.UserContext(), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewList(items))
}
