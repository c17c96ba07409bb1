package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// RegisteredClaims.ID (jti) identifica la sesión del operador: cada login abre una sesión nueva
// y las ventas pendientes de confirmación se guardan por operador + sesión.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"` // "admin" | "operador"
}

// Session datos extraídos de un token válido.
type Session struct {
	UserID    string
	Username  string
	Role      string
	SessionID string
}

// Generate genera un token JWT firmado para la sesión indicada.
func Generate(secret string, s Session, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt: secret vacío")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.SessionID,
			Issuer:    issuer,
			Subject:   s.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:   s.UserID,
		Username: s.Username,
		Role:     s.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Parse valida el token y devuelve la sesión.
// Retorna error si el token es inválido, expirado o tiene firma incorrecta.
func Parse(secret, tokenString string) (Session, error) {
	if secret == "" {
		return Session{}, fmt.Errorf("jwt: secret vacío")
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Session{}, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Session{}, fmt.Errorf("claims inválidos")
	}
	return Session{
		UserID:    claims.UserID,
		Username:  claims.Username,
		Role:      claims.Role,
		SessionID: claims.ID,
	}, nil
}
