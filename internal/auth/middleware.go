package auth

import (
	"context"
	"fmt"
	"net/http"

	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/utils"
)

type contextKey string

const claimsKey contextKey = "staff_claims"

// Middleware rejects requests without a valid staff bearer token and puts
// the claims into the request context.
func Middleware(secret, issuer string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorBody{Error: err.Error()})
				return
			}

			claims, err := ParseStaffToken(secret, issuer, rawToken)
			if err != nil {
				log.LogSecurity("STAFF_TOKEN", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorBody{Error: "invalid token"})
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after Middleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := Claims(r.Context())
			if claims == nil || !claims.HasRole(role) {
				utils.WriteJSON(w, http.StatusForbidden, utils.ErrorBody{Error: role + " role required"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Claims(ctx context.Context) *StaffClaims {
	claims, _ := ctx.Value(claimsKey).(*StaffClaims)
	return claims
}

// Helper to extract the staff subject in handlers
func UserID(ctx context.Context) string {
	if claims := Claims(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
