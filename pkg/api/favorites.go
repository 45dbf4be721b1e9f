package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/holonet/swapi-gateway/pkg/auth"
	"github.com/holonet/swapi-gateway/pkg/store"
)

// FavoritesHandler serves the per-user favorite bookmarks. All routes
// require authentication; a user holds at most one favorite per collection
// type.
type FavoritesHandler struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewFavoritesHandler creates the favorites handler.
func NewFavoritesHandler(st *store.Store, logger zerolog.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		store:  st,
		logger: logger,
	}
}

// List handles GET /favorites.
func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	favorites, err := h.store.ListFavorites(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Favorites listing failed")
		writeError(w, http.StatusInternalServerError, "could not list favorites")
		return
	}
	if favorites == nil {
		favorites = []store.Favorite{}
	}

	writeJSON(w, http.StatusOK, favorites)
}

// Get handles GET /favorites/{type}.
func (h *FavoritesHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	typ := chi.URLParam(r, "type")

	favorite, err := h.store.GetFavorite(r.Context(), claims.UserID, typ)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Favorite not found")
			return
		}
		h.logger.Error().Err(err).Msg("Favorite lookup failed")
		writeError(w, http.StatusInternalServerError, "could not get favorite")
		return
	}

	writeJSON(w, http.StatusOK, favorite)
}

// Add handles POST /favorites/{type}?item_id=...
func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	typ := chi.URLParam(r, "type")

	itemID := r.URL.Query().Get("item_id")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}

	fav := &store.Favorite{
		UserID: claims.UserID,
		Type:   typ,
		ItemID: itemID,
	}
	if err := h.store.AddFavorite(r.Context(), fav); err != nil {
		if errors.Is(err, store.ErrExists) {
			writeError(w, http.StatusBadRequest, "Favorite already exists")
			return
		}
		h.logger.Error().Err(err).Msg("Favorite add failed")
		writeError(w, http.StatusInternalServerError, "could not add favorite")
		return
	}

	writeMessage(w, "Favorite added successfully")
}

// Delete handles DELETE /favorites/{type}.
func (h *FavoritesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	typ := chi.URLParam(r, "type")

	if err := h.store.DeleteFavorite(r.Context(), claims.UserID, typ); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Favorite not found")
			return
		}
		h.logger.Error().Err(err).Msg("Favorite delete failed")
		writeError(w, http.StatusInternalServerError, "could not delete favorite")
		return
	}

	writeMessage(w, "Favorite deleted successfully")
}
