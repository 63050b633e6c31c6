package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mkoreshkov/saas-backend/internal/domain"
	"github.com/mkoreshkov/saas-backend/internal/dto"
	"github.com/mkoreshkov/saas-backend/internal/service"
)

// claimsFrom returns the verified claims set by AuthMiddleware, or nil.
func claimsFrom(c *gin.Context) *domain.TokenClaims {
	value, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, ok := value.(*domain.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

// bearerToken extracts the access token from the Authorization header,
// falling back to the configured cookie.
func bearerToken(c *gin.Context, cookieName string) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	token, _ := c.Cookie(cookieName)
	return token
}

// AuthMiddleware validates the access token and adds user info to the
// context. The token is accepted from the Authorization header or the
// named cookie.
func AuthMiddleware(authService service.AuthService, accessTokenCookie string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c, accessTokenCookie)
		if token == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authentication token is required",
			})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("access_token", token)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequireRole allows only users carrying one of the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authentication required",
			})
			c.Abort()
			return
		}

		for _, have := range claims.Roles {
			for _, want := range roles {
				if have == want {
					c.Next()
					return
				}
			}
		}

		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error:   "Forbidden",
			Message: "Insufficient permissions",
		})
		c.Abort()
	}
}

// RequireConfirmedEmail allows only users whose email is confirmed.
func RequireConfirmedEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil || !claims.EmailConfirmed {
			c.JSON(http.StatusForbidden, dto.ErrorResponse{
				Error:   "Forbidden",
				Message: "Email confirmation required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
