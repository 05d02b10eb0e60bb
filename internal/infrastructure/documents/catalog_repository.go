package documents

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/greengrocer-ims/internal/domain/docstore"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
	"github.com/jhoicas/greengrocer-ims/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.SupplierRepository  = (*SupplierRepo)(nil)
	_ repository.CustomerRepository  = (*CustomerRepo)(nil)
	_ repository.CategoryRepository  = (*CategoryRepo)(nil)
)

// ── Productos ───────────────────────────────────────────────────────────────

// ProductRepo productos en la colección "products". Pasar el store o una tx.
type ProductRepo struct {
	c collection[entity.Product, *entity.Product]
}

// NewProductRepository construye el repositorio sobre rw (store o tx).
func NewProductRepository(rw docstore.ReadWriter) *ProductRepo {
	return &ProductRepo{c: newCollection[entity.Product](rw, docstore.Products)}
}

// Create recalcula el stock agregado antes de persistir.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	p.Recompute()
	return r.c.create(ctx, p)
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.c.get(ctx, id)
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	q := docstore.Collection(docstore.Products).Where("sku", docstore.OpEqual, sku).Limit(1)
	list, err := r.c.list(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// List ordena por nombre.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	return r.c.list(ctx, docstore.Collection(docstore.Products).OrderBy("name", false))
}

// Update reemplaza el documento completo, stock incluido; Stock siempre se
// recalcula desde WarehouseStock. Usar dentro de UnitOfWork.Run tras leer el producto.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	p.Recompute()
	return r.c.set(ctx, p.ID, p)
}

// UpdateDetails escribe solo los datos maestros; warehouseStock y stock quedan
// como estén en el almacén.
func (r *ProductRepo) UpdateDetails(ctx context.Context, p *entity.Product) error {
	return r.c.patch(ctx, p.ID, p, "name", "sku", "categoryId", "unitOfMeasure", "reorderLevel", "updatedAt")
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

func (r *ProductRepo) Any(ctx context.Context) (bool, error) {
	docs, err := r.c.rw.Query(ctx, docstore.Collection(docstore.Products).Limit(1))
	if err != nil {
		return false, fmt.Errorf("count products: %w", err)
	}
	return len(docs) > 0, nil
}

// ── Bodegas ─────────────────────────────────────────────────────────────────

type WarehouseRepo struct {
	c collection[entity.Warehouse, *entity.Warehouse]
}

func NewWarehouseRepository(rw docstore.ReadWriter) *WarehouseRepo {
	return &WarehouseRepo{c: newCollection[entity.Warehouse](rw, docstore.Warehouses)}
}

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	return r.c.create(ctx, w)
}

func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	return r.c.get(ctx, id)
}

func (r *WarehouseRepo) List(ctx context.Context) ([]*entity.Warehouse, error) {
	return r.c.list(ctx, docstore.Collection(docstore.Warehouses).OrderBy("name", false))
}

func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	return r.c.patch(ctx, w.ID, w, "name", "location", "capacity", "updatedAt")
}

func (r *WarehouseRepo) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

// ── Proveedores ─────────────────────────────────────────────────────────────

type SupplierRepo struct {
	c collection[entity.Supplier, *entity.Supplier]
}

func NewSupplierRepository(rw docstore.ReadWriter) *SupplierRepo {
	return &SupplierRepo{c: newCollection[entity.Supplier](rw, docstore.Suppliers)}
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	return r.c.create(ctx, s)
}

func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	return r.c.get(ctx, id)
}

func (r *SupplierRepo) List(ctx context.Context) ([]*entity.Supplier, error) {
	return r.c.list(ctx, docstore.Collection(docstore.Suppliers).OrderBy("name", false))
}

func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	return r.c.patch(ctx, s.ID, s, "name", "contactEmail", "updatedAt")
}

func (r *SupplierRepo) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

// ── Clientes ────────────────────────────────────────────────────────────────

type CustomerRepo struct {
	c collection[entity.Customer, *entity.Customer]
}

func NewCustomerRepository(rw docstore.ReadWriter) *CustomerRepo {
	return &CustomerRepo{c: newCollection[entity.Customer](rw, docstore.Customers)}
}

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	return r.c.create(ctx, c)
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.c.get(ctx, id)
}

func (r *CustomerRepo) List(ctx context.Context) ([]*entity.Customer, error) {
	return r.c.list(ctx, docstore.Collection(docstore.Customers).OrderBy("name", false))
}

func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	return r.c.patch(ctx, c.ID, c, "name", "shippingAddress", "contactEmail", "updatedAt")
}

func (r *CustomerRepo) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

// ── Categorías ──────────────────────────────────────────────────────────────

type CategoryRepo struct {
	c collection[entity.Category, *entity.Category]
}

func NewCategoryRepository(rw docstore.ReadWriter) *CategoryRepo {
	return &CategoryRepo{c: newCollection[entity.Category](rw, docstore.Categories)}
}

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	return r.c.create(ctx, c)
}

func (r *CategoryRepo) GetByID(ctx context.Context, id string) (*entity.Category, error) {
	return r.c.get(ctx, id)
}

func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	return r.c.list(ctx, docstore.Collection(docstore.Categories).OrderBy("name", false))
}

func (r *CategoryRepo) Update(ctx context.Context, c *entity.Category) error {
	return r.c.patch(ctx, c.ID, c, "name", "description", "updatedAt")
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}
