package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/orbitchat/platform/internal/tenancy"
)

// AdminClaims are carried in dashboard access tokens. TenantID scopes
// every admin request.
type AdminClaims struct {
	TenantID string `json:"tenantId"`
	jwt.RegisteredClaims
}

// AdminAuth validates the bearer token, checks that its tenant matches the
// tenant in the route, and stashes the tenant id in the request context.
func AdminAuth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims := &AdminClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid || claims.TenantID == "" {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			// Tokens for one tenant must not reach another tenant's routes.
			if routeTenant := chi.URLParam(r, "tenantID"); routeTenant != "" && routeTenant != claims.TenantID {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := tenancy.WithTenantID(r.Context(), claims.TenantID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
