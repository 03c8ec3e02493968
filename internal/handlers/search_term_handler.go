package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tenderwatch/backend/internal/models"
	"github.com/tenderwatch/backend/libs/handlers"
	"go.uber.org/zap"
)

// SearchTermService is the interface that wraps methods for search term business logic
type SearchTermService interface {
	GetAll(ctx context.Context) ([]models.SearchTerm, error)
	Add(ctx context.Context, term string) (int, error)
	Edit(ctx context.Context, id int, term string) error
	AddBulk(ctx context.Context, terms []string) error
	EditBulk(ctx context.Context, terms []models.SearchTerm) error
	Delete(ctx context.Context, id int) error
}

// SearchTermHandler handles search term requests
type SearchTermHandler struct {
	handlers.BaseHandler
	terms SearchTermService
}

// NewSearchTermHandler creates a new search term handler
func NewSearchTermHandler(terms SearchTermService, logger *zap.Logger) *SearchTermHandler {
	return &SearchTermHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		terms:       terms,
	}
}

// RegisterRoutes registers search term handler routes
func (h *SearchTermHandler) RegisterRoutes(r chi.Router) {
	r.Route("/search-terms", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Post("/bulk", h.AddBulk)
		r.Put("/bulk", h.EditBulk)
		r.Put("/{termId}", h.Edit)
		r.Delete("/{termId}", h.Delete)
	})
}

// List handles GET /api/search-terms
// @Summary List search terms
// @Description List the search terms used to filter scraped tenders.
// @Tags search-terms
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.SearchTerm "Search terms"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /search-terms [get]
func (h *SearchTermHandler) List(w http.ResponseWriter, r *http.Request) {
	terms, err := h.terms.GetAll(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	if terms == nil {
		terms = []models.SearchTerm{}
	}
	h.RespondJSON(w, http.StatusOK, map[string]any{"terms": terms})
}

// Add handles POST /api/search-terms
// @Summary Add search term
// @Description Add a single search term.
// @Tags search-terms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param term body models.SearchTermRequest true "Search term"
// @Success 201 {object} map[string]any "Term created"
// @Failure 400 {object} map[string]string "Bad request"
// @Router /search-terms [post]
func (h *SearchTermHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req models.SearchTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.terms.Add(r.Context(), req.Term)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondJSON(w, http.StatusCreated, map[string]any{
		"msg": "Search term added successfully.",
		"id":  id,
	})
}

// Edit handles PUT /api/search-terms/{termId}
// @Summary Edit search term
// @Description Rewrite a single search term.
// @Tags search-terms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param termId path int true "Term ID"
// @Param term body models.SearchTermRequest true "Search term"
// @Success 200 {object} map[string]string "Term updated"
// @Failure 404 {object} map[string]string "Term not found"
// @Router /search-terms/{termId} [put]
func (h *SearchTermHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "termId"))
	if err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid term id")
		return
	}

	var req models.SearchTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.terms.Edit(r.Context(), id, req.Term); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondMsg(w, http.StatusOK, "Search term updated successfully.")
}

// AddBulk handles POST /api/search-terms/bulk
// @Summary Add search terms in bulk
// @Description Add a batch of search terms in one transaction.
// @Tags search-terms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param terms body models.BulkSearchTermRequest true "Search terms"
// @Success 201 {object} map[string]string "Terms created"
// @Failure 400 {object} map[string]string "Bad request"
// @Router /search-terms/bulk [post]
func (h *SearchTermHandler) AddBulk(w http.ResponseWriter, r *http.Request) {
	var req models.BulkSearchTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.terms.AddBulk(r.Context(), req.Terms); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondMsg(w, http.StatusCreated, "Search terms added successfully.")
}

// EditBulk handles PUT /api/search-terms/bulk
// @Summary Edit search terms in bulk
// @Description Rewrite a batch of search terms in one transaction.
// @Tags search-terms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param terms body models.BulkEditSearchTermRequest true "Search terms"
// @Success 200 {object} map[string]string "Terms updated"
// @Failure 400 {object} map[string]string "Bad request"
// @Router /search-terms/bulk [put]
func (h *SearchTermHandler) EditBulk(w http.ResponseWriter, r *http.Request) {
	var req models.BulkEditSearchTermRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.terms.EditBulk(r.Context(), req.Terms); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondMsg(w, http.StatusOK, "Search terms updated successfully.")
}

// Delete handles DELETE /api/search-terms/{termId}
// @Summary Delete search term
// @Description Delete a single search term.
// @Tags search-terms
// @Produce json
// @Security BearerAuth
// @Param termId path int true "Term ID"
// @Success 200 {object} map[string]string "Term deleted"
// @Failure 404 {object} map[string]string "Term not found"
// @Router /search-terms/{termId} [delete]
func (h *SearchTermHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "termId"))
	if err != nil {
		h.RespondMsg(w, http.StatusBadRequest, "invalid term id")
		return
	}

	if err := h.terms.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.RespondMsg(w, http.StatusOK, "Search term deleted successfully.")
}

func (h *SearchTermHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrTermNotFound):
		h.RespondMsg(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrTermRequired):
		h.RespondMsg(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error("search term request failed", zap.Error(err))
		h.RespondMsg(w, http.StatusInternalServerError, "internal server error")
	}
}
