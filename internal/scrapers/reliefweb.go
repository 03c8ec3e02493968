package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tenderwatch/backend/internal/models"
	"go.uber.org/zap"
)

// ReliefWebScraper reads tender announcements from the ReliefWeb JSON API
type ReliefWebScraper struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
}

// NewReliefWebScraper creates a ReliefWeb scraper rooted at baseURL
func NewReliefWebScraper(baseURL string, cfg Config, logger *zap.Logger) *ReliefWebScraper {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ReliefWebScraper{
		baseURL:   baseURL,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// Name implements Scraper
func (s *ReliefWebScraper) Name() string {
	return "ReliefWeb"
}

type reliefWebResponse struct {
	Data []struct {
		ID     string `json:"id"`
		Fields struct {
			Title string `json:"title"`
			URL   string `json:"url"`
			Date  struct {
				Closing string `json:"closing"`
			} `json:"date"`
		} `json:"fields"`
	} `json:"data"`
}

// Scrape implements Scraper
func (s *ReliefWebScraper) Scrape(ctx context.Context) ([]models.Tender, error) {
	url := fmt.Sprintf("%s/v1/reports?appname=tenderwatch&limit=50&query[value]=tender&fields[include][]=title&fields[include][]=url&fields[include][]=date.closing", s.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ReliefWeb request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ReliefWeb reports: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ReliefWeb returned status %d", resp.StatusCode)
	}

	var payload reliefWebResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode ReliefWeb response: %w", err)
	}

	tenders := make([]models.Tender, 0, len(payload.Data))
	for _, item := range payload.Data {
		var deadline *time.Time
		if item.Fields.Date.Closing != "" {
			parsed, err := time.Parse(time.RFC3339, item.Fields.Date.Closing)
			if err != nil {
				s.logger.Warn("failed to parse ReliefWeb closing date",
					zap.String("id", item.ID), zap.Error(err))
			} else {
				deadline = &parsed
			}
		}

		tenders = append(tenders, models.Tender{
			Title:     item.Fields.Title,
			Reference: "RW-" + item.ID,
			Deadline:  deadline,
			SourceURL: item.Fields.URL,
			Format:    "HTML",
			Source:    s.Name(),
		})
	}

	s.logger.Info("scraped ReliefWeb reports", zap.Int("count", len(tenders)))
	return tenders, nil
}
