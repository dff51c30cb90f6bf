package handler

import (
	"crypto/subtle" // constant-time comparison of the login name
	"net/http"      // HTTP status codes and primitives
	"strings"       // string manipulation utilities
	"time"          // token expiry in the response

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing
	"go.uber.org/zap"             // zap records failed logins

	"github.com/iliyamo/popcorn-palace/internal/utils" // helper functions (hashing, token issuing)
)

// AuthConfig holds the single administrator account and token settings.
type AuthConfig struct {
	AdminUser         string
	AdminPasswordHash string // bcrypt
	JWTSecret         string
	AccessTTLMin      int
}

// AuthHandler issues admin access tokens.
type AuthHandler struct {
	cfg AuthConfig
	log *zap.Logger
}

// NewAuthHandler returns an AuthHandler for cfg.
func NewAuthHandler(cfg AuthConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{cfg: cfg, log: nopIfNil(log)}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Role        string    `json:"role"`
}

// Login handles POST /auth/login: verify the admin credentials and return
// a bearer token carrying the ADMIN role.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.AdminUser)) == 1
	// bcrypt runs even when the user name is wrong
	passOK := utils.VerifyPassword(h.cfg.AdminPasswordHash, req.Password)
	if !userOK || !passOK {
		h.log.Warn("admin login rejected", zap.String("username", req.Username), zap.String("remote_ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.cfg.JWTSecret, h.cfg.AdminUser, utils.RoleAdmin, h.cfg.AccessTTLMin)
	if err != nil {
		h.log.Error("issue access token failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	h.log.Info("admin logged in", zap.String("username", h.cfg.AdminUser))
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken: access.Token,
		TokenType:   "Bearer",
		ExpiresAt:   access.Exp,
		Role:        utils.RoleAdmin,
	})
}
