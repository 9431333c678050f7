package http

import (
	"net/http"

	"github.com/dmitrijs2005/ebet/internal/common"
	"github.com/dmitrijs2005/ebet/internal/server/auth"
)

// requireAuth runs the gate on the Authorization header. Allowed requests
// reach next with the Principal in their context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, p, err := s.gate.Attach(r.Context(), r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			code := auth.ErrorCode(err)
			s.metrics.Gate("http", code)
			if auth.IsUnauthenticated(err) {
				s.logger.Info(ctx, "request not authorized", "path", r.URL.Path, "code", code)
			} else {
				s.logger.Error(ctx, "authorization failed", "path", r.URL.Path, "code", code, "error", err)
			}
			writeError(w, err)
			return
		}

		s.metrics.Gate("http", "")
		s.logger.Debug(ctx, "request authorized", "path", r.URL.Path, "account_id", p.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
