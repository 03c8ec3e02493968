package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tenderwatch/backend/internal/models"
	"github.com/tenderwatch/backend/internal/scrapers"
	"github.com/tenderwatch/backend/libs/handlers"
	"go.uber.org/zap"
)

// TenderService is the interface that wraps methods for reading stored tenders
type TenderService interface {
	List(ctx context.Context, tenderType string) ([]models.Tender, error)
}

// TenderHandler handles tender read requests
type TenderHandler struct {
	handlers.BaseHandler
	tenders TenderService
}

// NewTenderHandler creates a new tender handler
func NewTenderHandler(tenders TenderService, logger *zap.Logger) *TenderHandler {
	return &TenderHandler{
		BaseHandler: handlers.BaseHandler{Logger: logger},
		tenders:     tenders,
	}
}

// RegisterRoutes registers tender handler routes
func (h *TenderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tenders", h.List)
}

// List handles GET /api/tenders
// @Summary List stored tenders
// @Description List scraped tenders, newest first per source. The source query parameter narrows the listing to one source; the default covers every registered source.
// @Tags tenders
// @Produce json
// @Security BearerAuth
// @Param source query string false "Tender source" default(All)
// @Success 200 {object} map[string][]models.Tender "Stored tenders"
// @Failure 404 {object} map[string]string "Unknown source"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tenders [get]
func (h *TenderHandler) List(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	if source == "" {
		source = models.TenderTypeAll
	}

	tenders, err := h.tenders.List(r.Context(), source)
	if err != nil {
		if errors.Is(err, scrapers.ErrUnknownSource) {
			h.RespondMsg(w, http.StatusNotFound, err.Error())
			return
		}
		h.Logger.Error("tender listing failed", zap.Error(err))
		h.RespondMsg(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if tenders == nil {
		tenders = []models.Tender{}
	}
	h.RespondJSON(w, http.StatusOK, map[string]any{"tenders": tenders})
}
