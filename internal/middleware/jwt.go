package middleware // package middleware contains the HTTP middleware shared by all routes

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	CtxStaffID = "staff_id"
	CtxRole    = "role"
	CtxHotelID = "hotel_id"
)

// JWTAuth validates a Bearer access token and stores the staff id, role
// and hotel in the request context.  A token without a positive hotel_id
// claim is rejected: every downstream call is scoped by hotel.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims := jwt.MapClaims{}
			tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			hotel, ok := claims["hotel_id"].(float64)
			if !ok || hotel < 1 || hotel != float64(uint64(hotel)) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token has no hotel"})
			}
			sub, _ := claims.GetSubject()
			role, _ := claims["role"].(string)

			c.Set(CtxStaffID, sub)
			c.Set(CtxRole, role)
			c.Set(CtxHotelID, uint64(hotel))
			return next(c)
		}
	}
}
