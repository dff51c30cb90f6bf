package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/popcorn-palace/internal/utils"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := utils.HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthHandler(AuthConfig{AdminUser: "admin", AdminPasswordHash: hash, JWTSecret: "s3cret", AccessTTLMin: 5}, nil)
}

func login(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Login(e.NewContext(req, rec)))
	return rec
}

func TestLogin(t *testing.T) {
	h := newAuthHandler(t)

	rec := login(t, h, `{"username":"admin","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp tokenResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, utils.RoleAdmin, resp.Role)
}

func TestLogin_Rejected(t *testing.T) {
	h := newAuthHandler(t)

	assert.Equal(t, http.StatusUnauthorized, login(t, h, `{"username":"admin","password":"wrong"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, login(t, h, `{"username":"root","password":"hunter2"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(t, h, `{"username":"admin"}`).Code)
	assert.Equal(t, http.StatusBadRequest, login(t, h, `{`).Code)
}
