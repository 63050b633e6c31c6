package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/service"
)

// stubAuthService overrides only token validation; the embedded interface
// panics on anything else.
type stubAuthService struct {
	service.AuthService
	claims *domain.TokenClaims
	err    error
}

func (s *stubAuthService) ValidateToken(_ context.Context, _ string) (*domain.TokenClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func authRouter(auth service.AuthService, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{AuthMiddleware(auth, "access_token")}, extra...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	r.GET("/protected", chain...)
	return r
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	auth := &stubAuthService{claims: &domain.TokenClaims{UserID: "user-1", Email: "a@b.com"}}
	r := authRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAuthMiddlewareCookieFallback(t *testing.T) {
	auth := &stubAuthService{claims: &domain.TokenClaims{UserID: "user-2"}}
	r := authRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "cookie-token"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-2")
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	auth := &stubAuthService{claims: &domain.TokenClaims{UserID: "user-3"}}
	r := authRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	auth := &stubAuthService{claims: &domain.TokenClaims{UserID: "user-4"}}
	r := authRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectedToken(t *testing.T) {
	auth := &stubAuthService{err: fmt.Errorf("token has been revoked")}
	r := authRouter(auth)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer revoked")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	auth := &stubAuthService{claims: &domain.TokenClaims{
		UserID: "user-5",
		Roles:  []string{domain.RoleUser},
	}}

	r := authRouter(auth, RequireRole(domain.RoleAdmin))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = authRouter(auth, RequireRole(domain.RoleAdmin, domain.RoleUser))
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireConfirmedEmail(t *testing.T) {
	unconfirmed := &stubAuthService{claims: &domain.TokenClaims{UserID: "user-6"}}
	r := authRouter(unconfirmed, RequireConfirmedEmail())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	confirmed := &stubAuthService{claims: &domain.TokenClaims{UserID: "user-7", EmailConfirmed: true}}
	r = authRouter(confirmed, RequireConfirmedEmail())
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
