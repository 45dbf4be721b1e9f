package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/holonet/swapi-gateway/pkg/resolve"
	"github.com/holonet/swapi-gateway/pkg/upstream"
)

// ListResponse mirrors the upstream listing shape. Count, Next and Previous
// are passed through from the upstream's own pagination of the full result
// set; Results is the locally re-sliced page window. The two describe
// different paginations on purpose (documented gateway behavior).
type ListResponse struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []resolve.Record `json:"results"`
}

// CatalogHandler serves the per-collection listing and detail endpoints.
type CatalogHandler struct {
	upstream *upstream.Client
	expander *resolve.Expander
	logger   zerolog.Logger
}

// NewCatalogHandler creates the catalog handler.
func NewCatalogHandler(client *upstream.Client, expander *resolve.Expander, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		upstream: client,
		expander: expander,
		logger:   logger,
	}
}

// List handles GET /{collection}: search, flag-gated relation expansion,
// then sort and local pagination over the fetched result set.
func (h *CatalogHandler) List(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		q := r.URL.Query()

		page, err := h.upstream.GetCollection(ctx, collection, q.Get("search"))
		if err != nil {
			h.failPrimary(w, collection, err)
			return
		}

		h.expander.Expand(ctx, collection, relationFlags(q, collection), page.Results)

		orderBy, direction := orderParams(q, collection)
		results := resolve.SortAndWindow(
			page.Results,
			intParam(q, "page", 1),
			intParam(q, "n", 10),
			orderBy,
			direction,
		)

		writeJSON(w, http.StatusOK, ListResponse{
			Count:    page.Count,
			Next:     page.Next,
			Previous: page.Previous,
			Results:  results,
		})
	}
}

// Detail handles GET /{collection}/{id}: single record fetch plus the same
// flag-gated expansion, no pagination or ordering.
func (h *CatalogHandler) Detail(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil || id < 1 {
			writeError(w, http.StatusBadRequest, "invalid id")
			return
		}

		record, err := h.upstream.GetRecord(ctx, collection, id)
		if err != nil {
			h.failPrimary(w, collection, err)
			return
		}

		h.expander.ExpandRecord(ctx, collection, relationFlags(r.URL.Query(), collection), record)

		writeJSON(w, http.StatusOK, record)
	}
}

// failPrimary maps a primary fetch failure to the response. Unlike reference
// resolution there is no partial result to degrade to, so the error
// surfaces: upstream 4xx pass through (a missing record stays a 404),
// everything else is a bad gateway.
func (h *CatalogHandler) failPrimary(w http.ResponseWriter, collection string, err error) {
	h.logger.Error().Err(err).
		Str("collection", collection).
		Msg("Primary upstream fetch failed")

	var ue *upstream.Error
	if errors.As(err, &ue) && ue.ErrorClass == upstream.ErrorClassClient {
		writeError(w, ue.StatusCode, "upstream: "+ue.Message)
		return
	}
	writeError(w, http.StatusBadGateway, "upstream request failed")
}
