package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// HotelID returns the hotel the request acts for, or false when JWTAuth
// did not run.
func HotelID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(CtxHotelID).(uint64)
	return id, ok && id > 0
}

// staffID returns the authenticated staff id or "anon".
func staffID(c echo.Context) string {
	if s, ok := c.Get(CtxStaffID).(string); ok && s != "" {
		return s
	}
	return "anon"
}

// hotelKey renders the hotel for cache and rate-limit keys.
func hotelKey(c echo.Context) string {
	if id, ok := HotelID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "none"
}
