package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/goal-tracker/internal"
	"github.com/frahmantamala/goal-tracker/internal/auth"
	"github.com/frahmantamala/goal-tracker/internal/transport"
	"github.com/frahmantamala/goal-tracker/pkg/logger"
)

// Authenticate requires a valid Bearer token and puts its owner on the
// request context.
func Authenticate(validator auth.TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := transport.BearerToken(r)
			if token == "" {
				writeUnauthorized(w, r, internal.ErrMissingToken)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				writeUnauthorized(w, r, err)
				return
			}

			ctx := internal.ContextWithOwner(r.Context(), claims.UserID)
			ctx = logger.With(ctx, "user_id", claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		appErr = internal.ErrInvalidToken
	}

	logger.From(r.Context()).Warn("request rejected",
		"path", r.URL.Path,
		"code", appErr.Code,
		"error", err)

	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
