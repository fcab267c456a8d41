package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"portfolio-backend/config"
	"portfolio-backend/internal/delivery/http/response"
	"portfolio-backend/internal/domain"
	"portfolio-backend/pkg/auth"
	"portfolio-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware rejects requests without a valid Supabase access token.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase) gin.HandlerFunc {
	return authenticate(jwksProvider, cfg, authUC, true)
}

// OptionalAuthMiddleware identifies the caller when a token is present and
// lets anonymous requests through. An invalid token is still rejected.
func OptionalAuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase) gin.HandlerFunc {
	return authenticate(jwksProvider, cfg, authUC, false)
}

func authenticate(jwksProvider *auth.Provider, cfg *config.Config, authUC domain.AuthUsecase, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			if !required {
				c.Next()
				return
			}
			response.Error(c, http.StatusUnauthorized, "Authorization header or auth_token cookie required", nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			switch token.Method.(type) {
			case *jwt.SigningMethodHMAC:
				if cfg.SupabaseJWTSecret == "" {
					return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_SECRET is not configured")
				}
				return []byte(cfg.SupabaseJWTSecret), nil
			case *jwt.SigningMethodRSA:
				return jwksProvider.KeyFunc(token)
			}
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})
		if err != nil || !token.Valid {
			logger.WithError(err).Info("Token validation failed")
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if sub == "" {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		// The role always comes from our own user record, never from the token
		user := &domain.User{ID: sub, Email: email}
		if err := authUC.EnsureUserExists(c.Request.Context(), user); err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		role := user.Role
		if role == "" {
			role = domain.RoleUser
		}
		setIdentity(c, user.ID, user.Email, role)
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware. Usecases check again.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(string(domain.KeyUserRole)) != domain.RoleAdmin {
			response.Error(c, http.StatusForbidden, "Admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}
	return ""
}

// setIdentity stores the caller in both the gin context (for middleware)
// and the request context (for usecases).
func setIdentity(c *gin.Context, userID, email, role string) {
	c.Set(string(domain.KeyUserID), userID)
	c.Set(string(domain.KeyUserEmail), email)
	c.Set(string(domain.KeyUserRole), role)

	ctx := context.WithValue(c.Request.Context(), domain.KeyUserID, userID)
	ctx = context.WithValue(ctx, domain.KeyUserEmail, email)
	ctx = context.WithValue(ctx, domain.KeyUserRole, role)
	c.Request = c.Request.WithContext(ctx)
}

func loggerFor(c *gin.Context) *slog.Logger {
	args := []any{"request_id", c.GetString(RequestIDKey)}
	if userID := c.GetString(string(domain.KeyUserID)); userID != "" {
		args = append(args, "user_id", userID)
	}
	return logger.With(args...)
}
