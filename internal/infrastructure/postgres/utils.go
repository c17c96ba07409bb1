package postgres

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// validID los ids son columnas uuid: cualquier otro texto no existe y no se envía a PostgreSQL.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// isForeignKeyViolation verifica si un error es una violación de clave foránea (23503).
func isForeignKeyViolation(err error) bool {
	return hasCode(err, "23503")
}

// hasCode compara el SQLSTATE; solo errores *pgconn.PgError califican.
func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// constraintName nombre del constraint violado, vacío si no es un error de PostgreSQL.
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// likePattern patrón ILIKE "%s%" escapando comodines.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// limitOrAll LIMIT NULL equivale a sin límite.
func limitOrAll(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
