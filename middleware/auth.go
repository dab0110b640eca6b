// middleware/auth.go
package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ggg436/lingosses/config"
)

// The identity provider is external to this service; what arrives here is
// a signed token whose user_id claim is an opaque string. These middleware
// only verify the token and stash the claims in the request locals.

func jwtSecret() []byte {
	if config.AppConfig != nil && config.AppConfig.JWTSecret != "" {
		return []byte(config.AppConfig.JWTSecret)
	}
	return []byte(os.Getenv("JWT_SECRET"))
}

func parseBearer(c *fiber.Ctx) (jwt.MapClaims, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, fiber.NewError(401, "Missing authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, fiber.NewError(401, "Invalid authorization header format")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(401, "Invalid signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, fiber.NewError(401, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.NewError(401, "Invalid token claims")
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, fiber.NewError(401, "Token expired")
	}

	return claims, nil
}

// AuthMiddleware requires a valid user token.
func AuthMiddleware(c *fiber.Ctx) error {
	claims, err := parseBearer(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	c.Locals("userId", claims["user_id"])
	c.Locals("userName", claims["user_name"])
	c.Locals("userImage", claims["user_image"])
	c.Locals("isGuest", claims["is_guest"])

	return c.Next()
}

// AdminAuthMiddleware requires a valid token with the is_admin claim.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	claims, err := parseBearer(c)
	if err != nil {
		fe := err.(*fiber.Error)
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}

	isAdmin, ok := claims["is_admin"].(bool)
	if !ok || !isAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "Access denied. Admin privileges required."})
	}

	c.Locals("adminUsername", claims["username"])
	c.Locals("isAdmin", true)

	return c.Next()
}

// GetUserID returns the authenticated user's opaque id.
func GetUserID(c *fiber.Ctx) (string, error) {
	userID := c.Locals("userId")
	if userID == nil {
		return "", fiber.NewError(401, "User not authenticated")
	}

	if id, ok := userID.(string); ok && id != "" {
		return id, nil
	}

	return "", fiber.NewError(401, "Invalid user ID format")
}

// GetUserName returns the display name claim, or a default.
func GetUserName(c *fiber.Ctx) string {
	if name, ok := c.Locals("userName").(string); ok && name != "" {
		return name
	}
	return "User"
}

// GetUserImage returns the avatar claim, or a default.
func GetUserImage(c *fiber.Ctx) string {
	if img, ok := c.Locals("userImage").(string); ok && img != "" {
		return img
	}
	return "/mascot.svg"
}

// GenerateToken signs a user token. Used by the guest flow and by tests.
func GenerateToken(userID, userName, userImage string, isGuest bool) (string, error) {
	claims := jwt.MapClaims{
		"user_id":    userID,
		"user_name":  userName,
		"user_image": userImage,
		"is_guest":   isGuest,
		"exp":        time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// GenerateAdminToken signs a short-lived admin token.
func GenerateAdminToken(username string) (string, int64, error) {
	expiresAt := time.Now().Add(24 * time.Hour).Unix()

	claims := jwt.MapClaims{
		"username": username,
		"is_admin": true,
		"exp":      expiresAt,
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt, nil
}
