package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Ivan0402201/Taller/internal/application/dto"
	"github.com/Ivan0402201/Taller/pkg/token"
)

// Locals keys para UID y AppID en Fiber.
const (
	LocalUID   = "uid"
	LocalAppID = "app_id"
)

// AuthMiddleware valida el Bearer Token de sesión y extrae UID y AppID a c.Locals.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		uid, appID, err := token.Parse(secret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUID, uid)
		c.Locals(LocalAppID, appID)
		return c.Next()
	}
}

// GetUID devuelve el UID del contexto (después del middleware de auth).
func GetUID(c *fiber.Ctx) string {
	v := c.Locals(LocalUID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
