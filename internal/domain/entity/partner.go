package entity

import "time"

// Supplier proveedor de mercancía (origen de las recepciones).
type Supplier struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contactEmail"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (s *Supplier) SetID(id string) { s.ID = id }

// Customer cliente destino de las órdenes de entrega.
type Customer struct {
	ID              string    `json:"id,omitempty"`
	Name            string    `json:"name"`
	ShippingAddress string    `json:"shippingAddress"`
	ContactEmail    string    `json:"contactEmail"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (c *Customer) SetID(id string) { c.ID = id }

// Category agrupa productos (Fruits, Dairy, ...).
type Category struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c *Category) SetID(id string) { c.ID = id }
