package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Ventas-api/internal/domain/entity"
)

// PendingSaleRepository almacén de ventas enviadas y pendientes de confirmación.
// Cada operador+sesión tiene a lo sumo una; vencen solas después del ttl.
type PendingSaleRepository interface {
	// Save guarda (o reemplaza) la venta pendiente de la clave.
	Save(ctx context.Context, key string, pending *entity.PendingSale, ttl time.Duration) error
	// SaveIfAbsent guarda solo si la clave está libre (o su pendiente ya venció).
	// false indica que había otra pendiente vigente y no se escribió nada.
	SaveIfAbsent(ctx context.Context, key string, pending *entity.PendingSale, ttl time.Duration) (bool, error)
	// Get devuelve (nil, nil) si no hay pendiente o ya venció.
	Get(ctx context.Context, key string) (*entity.PendingSale, error)
	// Take obtiene y elimina la pendiente en una sola operación atómica: de dos llamadas
	// concurrentes, solo una la recibe.
	Take(ctx context.Context, key string) (*entity.PendingSale, error)
	Delete(ctx context.Context, key string) error
}
