package dto

import "time"

// CreateStockEntryRequest abre el registro de stock de un producto.
type CreateStockEntryRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

// SetStockRequest fija la cantidad disponible.
type SetStockRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0"`
}

// StockEntryResponse registro de stock con datos del producto.
type StockEntryResponse struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Barcode     string    `json:"barcode"`
	Quantity    int       `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StockListResponse lista paginada de stock.
type StockListResponse struct {
	Items []StockEntryResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
