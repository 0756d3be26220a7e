package router // package router registers the HTTP routes of the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/middleware"
)

// Deps carries what the route groups need.  Limit and Cache may be nil.
type Deps struct {
	Handler   *handler.Handler
	Auth      *handler.AuthHandler
	Catalog   *handler.CatalogHandler
	Health    echo.HandlerFunc
	JWTSecret string
	Limit     echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// RegisterRoutes exposes /healthz and /v1/auth without authentication and
// everything else under /v1 behind JWT and the STAFF or MANAGER role.  Changing a
// room's status is MANAGER only since it can move guests.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", d.Health)

	chain := []echo.MiddlewareFunc{
		middleware.JWTAuth(d.JWTSecret),
		middleware.RequireRole(middleware.RoleStaff, middleware.RoleManager),
	}
	if d.Limit != nil {
		chain = append(chain, d.Limit)
	}
	g := e.Group("/v1", chain...)

	if d.Auth != nil {
		RegisterAuth(e, g, d.Auth)
	}

	if d.Catalog != nil {
		RegisterCatalog(g, d.Catalog)
	}

	h := d.Handler
	g.POST("/reservations", h.CreateReservation)
	g.GET("/reservations/:id", h.GetReservation)
	g.PUT("/reservations/:id", h.UpdateReservation)
	g.POST("/reservations/:id/swap", h.SwapReservation)

	g.GET("/rooms/:id/availability", h.RoomAvailability)
	g.PUT("/rooms/:id/status", h.ChangeRoomStatus, middleware.RequireRole(middleware.RoleManager))

	// category counts are estimates; a short-lived cache is acceptable
	if d.Cache != nil {
		g.GET("/availability/categories/:category", h.CategoryAvailability, d.Cache)
	} else {
		g.GET("/availability/categories/:category", h.CategoryAvailability)
	}
}

// RegisterAuth exposes login, refresh and logout under /v1/auth without a
// token, and the caller's own session endpoints on the protected group.
// Only managers can add staff.
func RegisterAuth(e *echo.Echo, protected *echo.Group, a *handler.AuthHandler) {
	pub := e.Group("/v1/auth")
	pub.POST("/login", a.Login)
	pub.POST("/refresh", a.Refresh)
	pub.POST("/logout", a.Logout)

	protected.GET("/me", a.Me)
	protected.DELETE("/me/sessions", a.LogoutAll)
	protected.POST("/staff", a.CreateStaff, middleware.RequireRole(middleware.RoleManager))
}

// RegisterCatalog exposes room inventory and reservation listings.  Adding
// or editing rooms is MANAGER only.
func RegisterCatalog(g *echo.Group, h *handler.CatalogHandler) {
	manager := middleware.RequireRole(middleware.RoleManager)
	g.GET("/rooms", h.ListRooms)
	g.POST("/rooms", h.CreateRoom, manager)
	g.PATCH("/rooms/:id", h.UpdateRoom, manager)
	g.GET("/reservations", h.ListReservations)
}
