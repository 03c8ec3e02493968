package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenderwatch/backend/internal/models"
	"github.com/tenderwatch/backend/internal/scrapers"
	"go.uber.org/zap"
)

// mockTenderService is a mock implementation of TenderService
type mockTenderService struct {
	tenders   []models.Tender
	err       error
	requested string
}

func (m *mockTenderService) List(ctx context.Context, tenderType string) ([]models.Tender, error) {
	m.requested = tenderType
	if m.err != nil {
		return nil, m.err
	}
	return m.tenders, nil
}

func doTenderRequest(service *mockTenderService, target string) *httptest.ResponseRecorder {
	h := NewTenderHandler(service, zap.NewNop())
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTenderHandler_List(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockTenderService{tenders: []models.Tender{
			{ID: 1, Title: "Supply of water pumps", Reference: "UNDP-1", Source: "UNDP"},
			{ID: 2, Title: "Water trucking services", Reference: "RW-1", Source: "ReliefWeb"},
		}}
		rec := doTenderRequest(service, "/tenders")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.TenderTypeAll, service.requested)

		var body map[string][]models.Tender
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Len(t, body["tenders"], 2)
	})

	t.Run("source query narrows the listing", func(t *testing.T) {
		service := &mockTenderService{}
		rec := doTenderRequest(service, "/tenders?source=UNDP")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "UNDP", service.requested)
	})

	t.Run("empty result serializes as array", func(t *testing.T) {
		rec := doTenderRequest(&mockTenderService{}, "/tenders")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"tenders": []}`, rec.Body.String())
	})

	t.Run("unknown source", func(t *testing.T) {
		service := &mockTenderService{
			err: fmt.Errorf("%w: WorldBank", scrapers.ErrUnknownSource),
		}
		rec := doTenderRequest(service, "/tenders?source=WorldBank")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("service error", func(t *testing.T) {
		rec := doTenderRequest(&mockTenderService{err: errors.New("database error")}, "/tenders")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
