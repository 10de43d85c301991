package middleware

import (
	"log/slog"
	"net/http"

	"opsflow/internal/auth"
	"opsflow/internal/requestctx"
	"opsflow/internal/transport/http/api"
)

// devActor is used when AUTH_DISABLED is set for local development.
var devActor = requestctx.Actor{Subject: "local-dev", Email: "dev@localhost", Role: auth.RoleAdmin}

// Auth verifies the identity provider's bearer token and stores the caller in
// the request context. Requests without a valid token are rejected with 401.
func Auth(secret string, disabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if disabled {
				next.ServeHTTP(w, r.WithContext(requestctx.WithActor(r.Context(), devActor)))
				return
			}
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				slog.Debug("token rejected", "err", err, "requestId", GetRequestID(r.Context()))
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token", GetRequestID(r.Context()))
				return
			}

			ctx := requestctx.WithActor(r.Context(), requestctx.Actor{
				Subject: claims.Subject,
				Email:   claims.Email,
				Role:    claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := requestctx.GetActor(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !auth.HasPermission(actor.Role, permission) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
