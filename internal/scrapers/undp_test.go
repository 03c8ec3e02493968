package scrapers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const undpListingHTML = `
<html><body>
<a class="vacanciesTableLink" href="/view_negotiation.cfm?nego_id=1001">
  <div class="vacanciesTable__cell__label">Title</div><span>Supply of solar panels - Kenya</span>
  <div class="vacanciesTable__cell__label">Ref No</div><span>UNDP-KEN-00123</span>
  <div class="vacanciesTable__cell__label">Deadline</div><span><nobr>15-Apr-26 05:00 AM</nobr></span>
</a>
<a class="vacanciesTableLink" href="/view_negotiation.cfm?nego_id=1002">
  <div class="vacanciesTable__cell__label">Title</div><span>Office refurbishment - Uganda</span>
  <div class="vacanciesTable__cell__label">Ref No</div><span>UNDP-UGA-00456</span>
  <div class="vacanciesTable__cell__label">Deadline</div><span><nobr>20-Apr-26</nobr></span>
</a>
<a class="vacanciesTableLink" href="/view_negotiation.cfm?nego_id=1003">
  <div class="vacanciesTable__cell__label">Title</div><span>Borehole drilling - Kenya</span>
  <div class="vacanciesTable__cell__label">Ref No</div><span>UNDP-KEN-00124</span>
  <div class="vacanciesTable__cell__label">Deadline</div><span><nobr>not announced</nobr></span>
</a>
</body></html>`

func TestUNDPScraper_Scrape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(undpListingHTML))
	}))
	defer server.Close()

	scraper := NewUNDPScraper(server.URL, "Kenya", Config{}, zap.NewNop())

	tenders, err := scraper.Scrape(context.Background())
	require.NoError(t, err)

	// The Uganda notice is filtered out
	require.Len(t, tenders, 2)

	first := tenders[0]
	assert.Equal(t, "Supply of solar panels - Kenya", first.Title)
	assert.Equal(t, "UNDP-KEN-00123", first.Reference)
	assert.Equal(t, "UNDP", first.Source)
	assert.Equal(t, "HTML", first.Format)
	assert.Equal(t, server.URL+"/view_negotiation.cfm?nego_id=1001", first.SourceURL)
	require.NotNil(t, first.Deadline)
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), *first.Deadline)

	// Unparseable deadline is kept as nil
	second := tenders[1]
	assert.Equal(t, "UNDP-KEN-00124", second.Reference)
	assert.Nil(t, second.Deadline)
}

func TestUNDPScraper_ScrapeNoCountryFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(undpListingHTML))
	}))
	defer server.Close()

	scraper := NewUNDPScraper(server.URL, "", Config{}, zap.NewNop())

	tenders, err := scraper.Scrape(context.Background())
	require.NoError(t, err)
	assert.Len(t, tenders, 3)
}

func TestUNDPScraper_ScrapeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	scraper := NewUNDPScraper(server.URL, "Kenya", Config{}, zap.NewNop())

	tenders, err := scraper.Scrape(context.Background())
	assert.Error(t, err)
	assert.Nil(t, tenders)
}

func TestUNDPScraper_ScrapeCancelledContext(t *testing.T) {
	scraper := NewUNDPScraper("http://127.0.0.1:0", "Kenya", Config{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scraper.Scrape(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatFromURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{
			name:     "pdf",
			url:      "https://example.org/tender.PDF",
			expected: "PDF",
		},
		{
			name:     "docx",
			url:      "https://example.org/tender.docx",
			expected: "DOCX",
		},
		{
			name:     "plain page",
			url:      "https://example.org/view_negotiation.cfm?nego_id=1",
			expected: "HTML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFromURL(tt.url))
		})
	}
}
