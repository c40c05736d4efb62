package middleware

import (
	"digital-storefront/internal/common"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	// AdminKey is the echo context key holding the authenticated admin subject.
	AdminKey = "admin_subject"

	RoleAdmin = "admin"
)

type AdminClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// GenerateAdminToken signs an HS256 token for subject with role=admin.
func GenerateAdminToken(subject string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: RoleAdmin,
	})

	return token.SignedString(secret)
}

// ParseAdminToken returns the subject of a valid admin token.
func ParseAdminToken(tokenString string, secret []byte) (string, error) {
	claims := &AdminClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	if claims.Role != RoleAdmin {
		return "", fmt.Errorf("role %q is not allowed", claims.Role)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return claims.Subject, nil
}

// AdminAuth requires a bearer admin token and stores its subject under AdminKey.
func AdminAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(secret) == 0 {
				return common.Unauthorized("admin access is disabled")
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(tokenString) == "" {
				return common.Unauthorized("missing bearer token")
			}

			subject, err := ParseAdminToken(strings.TrimSpace(tokenString), secret)
			if err != nil {
				return common.Unauthorized("invalid admin token")
			}

			c.Set(AdminKey, subject)
			return next(c)
		}
	}
}

func AdminSubject(c echo.Context) string {
	subject, _ := c.Get(AdminKey).(string)
	return subject
}
