package entity

import "time"

// StockEntry cantidad disponible de un producto (uno a uno con Product).
// Quantity nunca es negativa: el descuento se hace con una actualización condicional.
type StockEntry struct {
	ProductID string
	Quantity  int
	UpdatedAt time.Time
}

// StockEntryView registro de stock con los datos del producto (listados y exportación).
type StockEntryView struct {
	StockEntry
	ProductName string
	Barcode     string
}
