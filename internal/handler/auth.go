package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/middleware"
	"github.com/iliyamo/hotel-reservation/internal/model"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/utils"
)

// StaffStore is implemented by *repository.StaffRepo.
type StaffStore interface {
	Create(ctx context.Context, s *model.Staff) error
	GetByEmail(ctx context.Context, email string) (*model.Staff, error)
	GetByID(ctx context.Context, id uint64) (*model.Staff, error)
}

// TokenStore is implemented by *repository.TokenRepo.
type TokenStore interface {
	StoreRefresh(ctx context.Context, staffID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForStaff(ctx context.Context, staffID uint64) error
}

// AuthConfig holds token lifetimes and the signing secret.
type AuthConfig struct {
	Secret       string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
	PasswordCost int
}

// AuthHandler logs staff in and hands out hotel-scoped access tokens.
type AuthHandler struct {
	cfg    AuthConfig
	staff  StaffStore
	tokens TokenStore
	log    *zap.Logger
}

// NewAuthHandler wires the auth endpoints.
func NewAuthHandler(cfg AuthConfig, staff StaffStore, tokens TokenStore, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{cfg: cfg, staff: staff, tokens: tokens, log: log.Named("auth")}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type createStaffReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=STAFF MANAGER"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type staffPart struct {
	ID      uint64 `json:"id"`
	HotelID uint64 `json:"hotel_id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

type authResp struct {
	Staff   staffPart `json:"staff"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func partOf(s *model.Staff) staffPart {
	return staffPart{ID: s.ID, HotelID: s.HotelID, Email: s.Email, Role: s.Role}
}

// issue mints an access token and stores a fresh refresh token.
func (h *AuthHandler) issue(ctx context.Context, s *model.Staff) (authResp, error) {
	access, err := utils.NewAccessToken(h.cfg.Secret, utils.StaffClaims{StaffID: s.ID, HotelID: s.HotelID, Role: s.Role}, h.cfg.AccessTTL)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.cfg.RefreshTTL)
	if err != nil {
		return authResp{}, err
	}
	if err := h.tokens.StoreRefresh(ctx, s.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		Staff:   partOf(s),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	req.Email = normalizeEmail(req.Email)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.staff.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		h.log.Error("load staff", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if !s.IsActive || !utils.VerifySecret(s.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	resp, err := h.issue(ctx, s)
	if err != nil {
		h.log.Error("issue tokens", zap.Uint64("staff_id", s.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh handles POST /v1/auth/refresh.  The presented token is revoked
// and replaced.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	staffID, err := h.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	s, err := h.staff.GetByID(ctx, staffID)
	if err != nil || !s.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err := h.tokens.RevokeByHash(ctx, hash); err != nil {
		h.log.Error("revoke refresh token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	resp, err := h.issue(ctx, s)
	if err != nil {
		h.log.Error("issue tokens", zap.Uint64("staff_id", s.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout handles POST /v1/auth/logout and ends the session of one refresh
// token.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
	if _, err := h.tokens.ValidateRefresh(c.Request().Context(), hash); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err := h.tokens.RevokeByHash(c.Request().Context(), hash); err != nil {
		h.log.Error("revoke refresh token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll handles DELETE /v1/me/sessions and revokes every refresh token
// of the caller.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	id, ok := staffIDFrom(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.tokens.RevokeAllForStaff(c.Request().Context(), id); err != nil {
		h.log.Error("revoke sessions", zap.Uint64("staff_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/me.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := staffIDFrom(c)
	hotel, hok := hotelID(c)
	if !ok || !hok {
		return unauthorized(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"staff_id": id, "hotel_id": hotel, "role": c.Get(middleware.CtxRole)})
}

// CreateStaff handles POST /v1/staff.  A manager can only add accounts to
// their own hotel.
func (h *AuthHandler) CreateStaff(c echo.Context) error {
	hotel, ok := hotelID(c)
	if !ok {
		return unauthorized(c)
	}
	var req createStaffReq
	if err := bind(c, &req); err != nil {
		return badRequest(c, err.Error())
	}
	req.Email = normalizeEmail(req.Email)
	role := req.Role
	if role == "" {
		role = middleware.RoleStaff
	}
	hash, err := utils.HashSecret(req.Password, h.cfg.PasswordCost)
	if err != nil {
		h.log.Error("hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	s := &model.Staff{HotelID: hotel, Email: req.Email, PasswordHash: hash, Role: role, IsActive: true}
	if err := h.staff.Create(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		h.log.Error("create staff", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": partOf(s)})
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func staffIDFrom(c echo.Context) (uint64, bool) {
	raw, _ := c.Get(middleware.CtxStaffID).(string)
	id, err := strconv.ParseUint(raw, 10, 64)
	return id, err == nil && id > 0
}
