package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authUtils "fixmycity-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedRouter(tokens *authUtils.TokenService, adminOnly bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	handlers := []gin.HandlerFunc{Auth(tokens)}
	if adminOnly {
		handlers = append(handlers, RequireAdmin())
	}
	handlers = append(handlers, func(c *gin.Context) {
		subject, _ := c.Get(CtxSubject)
		role, _ := c.Get(CtxRole)
		c.JSON(http.StatusOK, gin.H{"subject": subject, "role": role})
	})

	r.GET("/protected", handlers...)
	return r
}

func get(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newProtectedRouter(authUtils.NewTokenService([]byte("s")), false)
	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
}

func TestAuth_GarbageToken(t *testing.T) {
	r := newProtectedRouter(authUtils.NewTokenService([]byte("s")), false)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer not-a-token").Code)
}

func TestAuth_ExpiredToken(t *testing.T) {
	tokens := authUtils.NewTokenService([]byte("s"))
	token, err := tokens.Issue(authUtils.Claims{Subject: "jane@example.com"}, -time.Minute)
	require.NoError(t, err)

	r := newProtectedRouter(tokens, false)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+token).Code)
}

func TestAuth_SetsIdentity(t *testing.T) {
	tokens := authUtils.NewTokenService([]byte("s"))
	token, err := tokens.Issue(authUtils.Claims{Subject: "jane@example.com", Role: "user"}, time.Hour)
	require.NoError(t, err)

	r := newProtectedRouter(tokens, false)
	w := get(r, "Bearer "+token)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"jane@example.com","role":"user"}`, w.Body.String())
}

func TestAuth_BareTokenWithoutBearerPrefix(t *testing.T) {
	tokens := authUtils.NewTokenService([]byte("s"))
	token, err := tokens.Issue(authUtils.Claims{Subject: "jane@example.com", Role: "user"}, time.Hour)
	require.NoError(t, err)

	r := newProtectedRouter(tokens, false)
	assert.Equal(t, http.StatusOK, get(r, token).Code)
}

func TestRequireAdmin_RejectsUserRole(t *testing.T) {
	tokens := authUtils.NewTokenService([]byte("s"))
	token, err := tokens.Issue(authUtils.Claims{Subject: "jane@example.com", Role: "user"}, time.Hour)
	require.NoError(t, err)

	r := newProtectedRouter(tokens, true)
	assert.Equal(t, http.StatusForbidden, get(r, "Bearer "+token).Code)
}

func TestRequireAdmin_AllowsAdminRole(t *testing.T) {
	tokens := authUtils.NewTokenService([]byte("s"))
	token, err := tokens.Issue(authUtils.Claims{Subject: "root@example.com", Role: "admin"}, time.Hour)
	require.NoError(t, err)

	r := newProtectedRouter(tokens, true)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+token).Code)
}
