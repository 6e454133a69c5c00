package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"canvas-backend/pkg/auth"
	"canvas-backend/pkg/common"
)

// Authenticate validates bearer tokens and attaches the claims to the
// request context
func Authenticate(validator *auth.Validator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authentication token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("token rejected",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
				message := "invalid token"
				if err == auth.ErrExpiredToken {
					message = "token has expired"
				}
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
				return
			}

			ctx := auth.SetUserInContext(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return header
}
