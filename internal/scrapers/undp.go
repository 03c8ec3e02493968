package scrapers

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
	"github.com/tenderwatch/backend/internal/models"
	"go.uber.org/zap"
)

const undpDeadlineLayout = "2-Jan-06"

// deadlineRe extracts the date part out of strings like "15-Apr-26 05:00 AM"
var deadlineRe = regexp.MustCompile(`(\d{1,2}-\w{3}-\d{2})`)

// UNDPScraper reads the UNDP procurement notices listing page. Only notices
// whose title mentions the configured country are kept.
type UNDPScraper struct {
	baseURL       string
	countryFilter string
	cfg           Config
	logger        *zap.Logger
}

// NewUNDPScraper creates a UNDP scraper rooted at baseURL
func NewUNDPScraper(baseURL, countryFilter string, cfg Config, logger *zap.Logger) *UNDPScraper {
	return &UNDPScraper{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		countryFilter: countryFilter,
		cfg:           cfg,
		logger:        logger,
	}
}

// Name implements Scraper
func (s *UNDPScraper) Name() string {
	return "UNDP"
}

// Scrape implements Scraper
func (s *UNDPScraper) Scrape(ctx context.Context) ([]models.Tender, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var tenders []models.Tender

	c := colly.NewCollector()
	if s.cfg.UserAgent != "" {
		c.UserAgent = s.cfg.UserAgent
	}
	if s.cfg.HTTPTimeout > 0 {
		c.SetRequestTimeout(s.cfg.HTTPTimeout)
	}
	c.OnHTML("a.vacanciesTableLink", func(h *colly.HTMLElement) {
		title := cellValue(h.DOM, "Title")
		if s.countryFilter != "" && !strings.Contains(title, s.countryFilter) {
			return
		}

		reference := cellValue(h.DOM, "Ref No")
		deadline := s.parseDeadline(title, cellValue(h.DOM, "Deadline"))

		href := h.Attr("href")
		noticeID := href[strings.LastIndex(href, "=")+1:]
		sourceURL := fmt.Sprintf("%s/view_negotiation.cfm?nego_id=%s", s.baseURL, noticeID)

		tenders = append(tenders, models.Tender{
			Title:     title,
			Reference: reference,
			Deadline:  deadline,
			SourceURL: sourceURL,
			Format:    formatFromURL(sourceURL),
			Source:    s.Name(),
		})
	})

	if err := c.Visit(s.baseURL + "/"); err != nil {
		return nil, fmt.Errorf("failed to fetch UNDP notices: %w", err)
	}

	s.logger.Info("scraped UNDP notices", zap.Int("count", len(tenders)))
	return tenders, nil
}

// parseDeadline pulls the date out of the deadline cell; notices with an
// unparseable deadline are kept, just without one
func (s *UNDPScraper) parseDeadline(title, raw string) *time.Time {
	match := deadlineRe.FindString(raw)
	if match == "" {
		s.logger.Warn("no deadline in UNDP notice", zap.String("title", title), zap.String("raw", raw))
		return nil
	}

	deadline, err := time.Parse(undpDeadlineLayout, match)
	if err != nil {
		s.logger.Warn("failed to parse UNDP deadline", zap.String("title", title), zap.Error(err))
		return nil
	}
	return &deadline
}

// cellValue finds the listing cell with the given label and returns the text
// of its value span
func cellValue(sel *goquery.Selection, label string) string {
	var value string
	sel.Find("div.vacanciesTable__cell__label").EachWithBreak(func(_ int, lbl *goquery.Selection) bool {
		if strings.Contains(strings.TrimSpace(lbl.Text()), label) {
			value = strings.TrimSpace(lbl.Next().Text())
			return false
		}
		return true
	})
	return value
}

// formatFromURL classifies the linked document by its extension
func formatFromURL(url string) string {
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "PDF"
	case strings.HasSuffix(lower, ".docx"):
		return "DOCX"
	}
	return "HTML"
}
