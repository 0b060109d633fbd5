package middleware

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/pkg/auth"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

// BasicAuth rejects requests whose Authorization header the gate does not
// accept: 401 when it is missing, 403 otherwise.
//
//	r.With(middleware.BasicAuth(auth.NewGate())).Get("/import", ...)
func BasicAuth(gate *auth.Gate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := gate.Check(r.Header.Get("Authorization"))
			if err != nil {
				status, msg := auth.Reply(err)
				logger.WithCtx(r.Context()).Warn("access denied", "path", r.URL.Path, "status", status)
				response.Error(w, status, msg)
				return
			}

			log := logger.WithCtx(r.Context()).With("user", user)
			next.ServeHTTP(w, r.WithContext(logger.InjectLogger(r.Context(), log)))
		})
	}
}
