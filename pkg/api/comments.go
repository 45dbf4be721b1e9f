package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/holonet/swapi-gateway/pkg/auth"
	"github.com/holonet/swapi-gateway/pkg/resolve"
	"github.com/holonet/swapi-gateway/pkg/store"
)

// CommentsHandler serves threaded comments on catalog items. Writing
// requires authentication; reading is public. Update and delete are
// restricted to the comment's author.
type CommentsHandler struct {
	store  *store.Store
	logger zerolog.Logger
}

// NewCommentsHandler creates the comments handler.
func NewCommentsHandler(st *store.Store, logger zerolog.Logger) *CommentsHandler {
	return &CommentsHandler{
		store:  st,
		logger: logger,
	}
}

type commentRequest struct {
	Content  string `json:"content"`
	ItemID   string `json:"item_id"`
	ItemType string `json:"item_type"`
}

type commentUpdateRequest struct {
	Content string `json:"content"`
}

// CommentsResponse is the paginated comment listing shape. Total counts all
// matching comments; Comments is the sorted page window.
type CommentsResponse struct {
	Comments []store.Comment `json:"comments"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}

// Add handles POST /comments.
func (h *CommentsHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Content == "" || req.ItemID == "" || req.ItemType == "" {
		writeError(w, http.StatusBadRequest, "content, item_id and item_type are required")
		return
	}

	comment := &store.Comment{
		Content:  req.Content,
		ItemID:   req.ItemID,
		ItemType: req.ItemType,
		UserID:   claims.UserID,
	}
	if err := h.store.AddComment(r.Context(), comment); err != nil {
		h.logger.Error().Err(err).Msg("Comment add failed")
		writeError(w, http.StatusInternalServerError, "could not add comment")
		return
	}

	writeMessage(w, "Comment added successfully")
}

// ListByItem handles GET /comments?item_id=&item_type=.
func (h *CommentsHandler) ListByItem(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	itemID, itemType := q.Get("item_id"), q.Get("item_type")
	if itemID == "" || itemType == "" {
		writeError(w, http.StatusBadRequest, "item_id and item_type are required")
		return
	}

	comments, err := h.store.ListCommentsByItem(r.Context(), itemID, itemType)
	if err != nil {
		h.logger.Error().Err(err).Msg("Comment listing failed")
		writeError(w, http.StatusInternalServerError, "could not list comments")
		return
	}

	h.respondPage(w, r, comments)
}

// ListByUser handles GET /comments/user/{userID}.
func (h *CommentsHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	comments, err := h.store.ListCommentsByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("Comment listing failed")
		writeError(w, http.StatusInternalServerError, "could not list comments")
		return
	}

	h.respondPage(w, r, comments)
}

// Get handles GET /comments/{id}.
func (h *CommentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	comment, err := h.store.GetComment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Comment not found")
			return
		}
		h.logger.Error().Err(err).Msg("Comment lookup failed")
		writeError(w, http.StatusInternalServerError, "could not get comment")
		return
	}

	writeJSON(w, http.StatusOK, comment)
}

// Update handles PUT /comments/{id}. Only the author may update; anyone
// else sees a 404.
func (h *CommentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	var req commentUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	err := h.store.UpdateComment(r.Context(), chi.URLParam(r, "id"), claims.UserID, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Comment not found or you don't have permission to update it")
			return
		}
		h.logger.Error().Err(err).Msg("Comment update failed")
		writeError(w, http.StatusInternalServerError, "could not update comment")
		return
	}

	writeMessage(w, "Comment updated successfully")
}

// Delete handles DELETE /comments/{id}. Same author-only rule as Update.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	err := h.store.DeleteComment(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Comment not found or you don't have permission to delete it")
			return
		}
		h.logger.Error().Err(err).Msg("Comment delete failed")
		writeError(w, http.StatusInternalServerError, "could not delete comment")
		return
	}

	writeMessage(w, "Comment deleted successfully")
}

// respondPage sorts the full comment set, slices the requested window, and
// writes the listing response. Same sort-then-slice semantics as the
// catalog listing.
func (h *CommentsHandler) respondPage(w http.ResponseWriter, r *http.Request, comments []store.Comment) {
	if comments == nil {
		comments = []store.Comment{}
	}

	q := r.URL.Query()
	page := intParam(q, "page", 1)
	limit := intParam(q, "limit", 10)
	orderBy := q.Get("order_by")
	if orderBy == "" {
		orderBy = "created"
	}
	desc := q.Get("order_direction") == resolve.DirectionDesc

	sort.SliceStable(comments, func(i, j int) bool {
		ki, kj := commentSortKey(comments[i], orderBy), commentSortKey(comments[j], orderBy)
		if desc {
			return ki > kj
		}
		return ki < kj
	})

	total := len(comments)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	writeJSON(w, http.StatusOK, CommentsResponse{
		Comments: comments[start:end],
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// commentSortKey renders a comment field as its sort key string. Timestamps
// sort correctly as RFC 3339 strings.
func commentSortKey(c store.Comment, field string) string {
	switch field {
	case "content":
		return c.Content
	case "updated":
		if c.Updated == nil {
			return ""
		}
		return c.Updated.Format("2006-01-02T15:04:05.000000000Z07:00")
	default:
		return c.Created.Format("2006-01-02T15:04:05.000000000Z07:00")
	}
}
