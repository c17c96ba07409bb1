package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Barcode     string          `json:"barcode" validate:"required,min=1,max=20"`
	Name        string          `json:"name" validate:"required,min=1,max=100"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

// UpdateProductRequest entrada para actualizar un producto. El código de barras no cambia.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	Barcode     string          `json:"barcode"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
