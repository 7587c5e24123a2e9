package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/filebridge/internal/command"
)

// NewRouter creates a chi router with the command API mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(reg *command.Registry, authEnabled bool, token string) chi.Router {
	h := NewHandler(reg)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/commands", h.ListCommands)
	r.Post("/invoke/{command}", h.Invoke)

	return r
}
