package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleOperator = "operador"
)

// Estados de usuario.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User operador del punto de venta.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, operador
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
