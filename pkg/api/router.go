// Package api wires the gateway's HTTP surface: the per-collection catalog
// endpoints backed by the resolution engine, plus accounts, favorites and
// comments.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/holonet/swapi-gateway/pkg/auth"
	"github.com/holonet/swapi-gateway/pkg/logging"
	"github.com/holonet/swapi-gateway/pkg/resolve"
	"github.com/holonet/swapi-gateway/pkg/store"
	"github.com/holonet/swapi-gateway/pkg/upstream"
)

// Deps bundles the collaborators the router needs.
type Deps struct {
	Upstream *upstream.Client
	Expander *resolve.Expander
	Store    *store.Store
	Tokens   *auth.Manager
}

// NewRouter builds the gateway router. Catalog listing and detail routes
// are registered once per known collection from the relation table, so a
// new collection only needs a table entry.
func NewRouter(deps Deps) http.Handler {
	logger := logging.NewLogger("api")

	catalog := NewCatalogHandler(deps.Upstream, deps.Expander, logger)
	accounts := NewAccountHandler(deps.Store, deps.Tokens, logger)
	favorites := NewFavoritesHandler(deps.Store, logger)
	comments := NewCommentsHandler(deps.Store, logger)

	authenticated := auth.Middleware(deps.Tokens)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, collection := range resolve.Collections {
		r.Get("/"+collection, catalog.List(collection))
		r.Get("/"+collection+"/{id}", catalog.Detail(collection))
	}

	r.Post("/register", accounts.Register)
	r.Post("/token", accounts.Token)

	r.Group(func(r chi.Router) {
		r.Use(authenticated)
		r.Delete("/user", accounts.DeleteUser)

		r.Get("/favorites", favorites.List)
		r.Get("/favorites/{type}", favorites.Get)
		r.Post("/favorites/{type}", favorites.Add)
		r.Delete("/favorites/{type}", favorites.Delete)

		r.Post("/comments", comments.Add)
		r.Put("/comments/{id}", comments.Update)
		r.Delete("/comments/{id}", comments.Delete)
	})

	r.Get("/comments", comments.ListByItem)
	r.Get("/comments/user/{userID}", comments.ListByUser)
	r.Get("/comments/{id}", comments.Get)

	return r
}
