package middleware

import (
	"context"
	"net/http"
	"strings"

	"venuebook/pkg/logger"
	"venuebook/pkg/model"
)

const principalKey contextKey = "principal"

// Trusted headers populated by the authenticating gateway. The core
// never parses sessions or tokens itself; a request without a resolved
// principal is refused at the boundary.
const (
	HeaderUserID      = "X-User-ID"
	HeaderUserRole    = "X-User-Role"
	HeaderCountryCode = "X-Country-Code"
)

func Principal(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(HeaderUserID))
			role := strings.TrimSpace(r.Header.Get(HeaderUserRole))

			if id == "" || !model.IsRole(role) {
				requestID := ""
				if rid := r.Context().Value(RequestIDKey); rid != nil {
					if s, ok := rid.(string); ok {
						requestID = s
					}
				}
				log.Warn("Request without authenticated principal",
					"request_id", requestID,
					"path", r.URL.Path,
					"method", r.Method,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Authentication required","code":"UNAUTHORIZED"}`))
				return
			}

			principal := &model.Principal{
				ID:          id,
				Role:        role,
				CountryCode: strings.TrimSpace(r.Header.Get(HeaderCountryCode)),
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated principal, or nil when
// the request bypassed the Principal middleware.
func PrincipalFromContext(ctx context.Context) *model.Principal {
	p, _ := ctx.Value(principalKey).(*model.Principal)
	return p
}

// RequestIDFromContext returns the request ID set by RequestLogging.
func RequestIDFromContext(ctx context.Context) string {
	if rid, ok := ctx.Value(RequestIDKey).(string); ok {
		return rid
	}
	return ""
}
