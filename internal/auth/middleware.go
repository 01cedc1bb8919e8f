package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/class-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/class-booking-backend/internal/pkg/response"
)

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	return token, ok && strings.EqualFold(scheme, "bearer") && token != ""
}

// AuthRequired rejects requests without a valid bearer token. On success it
// stores the user ID and tags the request logger with the user and token IDs.
func AuthRequired(jwtManager *JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "missing Authorization header"})
			return
		}
		token, ok := bearerToken(header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "invalid Authorization header format"})
			return
		}

		claims, err := jwtManager.ParseAndValidate(token)
		if err != nil {
			logger.FromContext(c.Request.Context()).Debug("token rejected", logger.Err(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "invalid or expired token"})
			return
		}

		c.Set(userIDKey, claims.Subject)
		ctx := c.Request.Context()
		log := logger.FromContext(ctx).With(slog.String("user_id", claims.Subject), slog.String("jti", claims.ID))
		c.Request = c.Request.WithContext(logger.WithContext(ctx, log))
		c.Next()
	}
}
