package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
)

// crudUseCase contrato común de los maestros (bodegas, proveedores, clientes, categorías).
type crudUseCase[C, U, R any] interface {
	Create(ctx context.Context, in C) (*R, error)
	GetByID(ctx context.Context, id string) (*R, error)
	Update(ctx context.Context, id string, in U) (*R, error)
	List(ctx context.Context) ([]R, error)
	Delete(ctx context.Context, id string) error
}

// ResourceHandler CRUD HTTP genérico sobre un crudUseCase.
type ResourceHandler[C, U, R any] struct {
	uc crudUseCase[C, U, R]
}

// NewResourceHandler construye el handler.
func NewResourceHandler[C, U, R any](uc crudUseCase[C, U, R]) *ResourceHandler[C, U, R] {
	return &ResourceHandler[C, U, R]{uc: uc}
}

// Mount registra GET/POST en / y GET/PUT/DELETE en /:id.
func (h *ResourceHandler[C, U, R]) Mount(r fiber.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/:id", h.GetByID)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
}

func (h *ResourceHandler[C, U, R]) Create(c *fiber.Ctx) error {
	var in C
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *ResourceHandler[C, U, R]) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *ResourceHandler[C, U, R]) Update(c *fiber.Ctx) error {
	var in U
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *ResourceHandler[C, U, R]) List(c *fiber.Ctx) error {
	items, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewList(items))
}

func (h *ResourceHandler[C, U, R]) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
