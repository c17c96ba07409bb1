package sales

import "github.com/jhoicas/Ventas-api/internal/domain/entity"

// Predicados de autorización sobre ventas e ítems. Los handlers los consultan antes de
// cualquier escritura; una venta registrada no admite cambios por ninguna vía.

// CanCreateSale admin y operadores registran ventas.
func CanCreateSale(role string) bool {
	return role == entity.RoleAdmin || role == entity.RoleOperator
}

// CanChangeSale siempre false para una venta existente.
func CanChangeSale(sale *entity.Sale) bool {
	return sale == nil
}

// CanDeleteSale siempre false.
func CanDeleteSale(*entity.Sale) bool {
	return false
}

// CanAddLineItemDirectly los ítems solo nacen junto con su venta.
func CanAddLineItemDirectly() bool {
	return false
}

// CanChangeLineItem siempre false.
func CanChangeLineItem(*entity.LineItem) bool {
	return false
}

// CanManageCatalog productos y stock: solo admin.
func CanManageCatalog(role string) bool {
	return role == entity.RoleAdmin
}
