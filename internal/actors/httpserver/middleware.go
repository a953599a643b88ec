package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"

	"github.com/rbroggi/studyhub/internal/core/model"
)

type contextKey string

const actorKey contextKey = "actor"

// sessionMiddleware resolves the Authorization bearer token into the acting account and
// stores it on the request context. Missing or invalid tokens degrade to an anonymous
// request; only a storage failure aborts it.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		actor, err := s.access.Resolve(r.Context(), token)
		if err != nil {
			log.WithError(err).Error("error resolving session")
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor.Account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorFrom returns the acting account of the request, nil for anonymous requests.
func actorFrom(r *http.Request) *model.Account {
	account, _ := r.Context().Value(actorKey).(*model.Account)
	return account
}

// requireActor returns the acting account or replies 401 when the request is anonymous.
func requireActor(w http.ResponseWriter, r *http.Request) (*model.Account, bool) {
	account := actorFrom(r)
	if account == nil {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, envelope{Status: statusError, Error: "authentication required"})
		return nil, false
	}
	return account, true
}
