// Package sales contiene las reglas de negocio de la venta: validación de ítems contra el stock,
// congelamiento del precio unitario y cálculo del total. Son funciones puras; la persistencia y
// la transacción viven en la capa de aplicación.
package sales

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// Options políticas configurables de la validación.
type Options struct {
	// RequireStockEntry: si es false, un producto sin registro de stock se vende sin control.
	RequireStockEntry bool
}

// ItemPrefix prefijo de campo de la línea i ("items[2]").
func ItemPrefix(i int) string {
	return fmt.Sprintf("items[%d]", i)
}

// ItemField nombre del campo de la línea i en los errores ("items[2].quantity").
func ItemField(i int, name string) string {
	return ItemPrefix(i) + "." + name
}

// ValidateQuantity la cantidad debe ser un entero positivo.
func ValidateQuantity(field string, quantity int) error {
	if quantity < 1 {
		return NewValidationError(field, MsgQuantityMin)
	}
	return nil
}

// CheckStock verifica la cantidad contra el registro de stock. Sin registro (entry == nil)
// el control se omite, salvo que opts.RequireStockEntry esté activo.
func CheckStock(field string, productID string, requested int, entry *entity.StockEntry, opts Options) error {
	if entry == nil {
		if opts.RequireStockEntry {
			return NewValidationError(field, MsgUntrackedProduct)
		}
		return nil
	}
	if requested > entry.Quantity {
		return &StockError{Field: field, ProductID: productID, Requested: requested, Available: entry.Quantity}
	}
	return nil
}

// SnapshotPrice fija el precio unitario con el precio actual del producto si aún no tiene uno.
// Un precio ya fijado no cambia aunque el catálogo cambie después.
func SnapshotPrice(item *entity.LineItem, product *entity.Product) {
	if item.UnitPrice.IsZero() {
		item.UnitPrice = product.Price
	}
}

// ValidateLineItem pipeline previo al guardado de un ítem: precio, cantidad y stock.
// prefix es el prefijo de campo del ítem ("items[0]"); vacío para un ítem suelto.
func ValidateLineItem(prefix string, item *entity.LineItem, product *entity.Product, entry *entity.StockEntry, opts Options) error {
	field := func(name string) string {
		if prefix == "" {
			return name
		}
		return prefix + "." + name
	}
	if product == nil {
		return NewValidationError(field("product_id"), MsgProductNotFound)
	}
	SnapshotPrice(item, product)
	if err := ValidateQuantity(field("quantity"), item.Quantity); err != nil {
		return err
	}
	return CheckStock(field("quantity"), product.ID, item.Quantity, entry, opts)
}

// ValidateFormShape validación estructural del formulario (sin consultar catálogo ni stock).
// Acumula todos los errores de campo.
func ValidateFormShape(form entity.SaleForm) error {
	v := &ValidationError{}
	if !form.PaymentMethod.Valid() {
		v.Add("payment_method", MsgPaymentInvalid)
	}
	if len(form.Items) == 0 {
		v.Add("items", MsgItemsRequired)
	}
	for i, it := range form.Items {
		if it.ProductID == "" {
			v.Add(ItemField(i, "product_id"), MsgProductRequired)
		}
		if it.Quantity < 1 {
			v.Add(ItemField(i, "quantity"), MsgQuantityMin)
		}
	}
	return v.OrNil()
}

// Total suma cantidad × precio unitario de los ítems. Se recalcula siempre; nunca se guarda.
func Total(items []*entity.LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// TotalQuantity suma las cantidades de los ítems.
func TotalQuantity(items []*entity.LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
