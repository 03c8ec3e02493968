package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tenderwatch/backend/internal/models"
	"github.com/tenderwatch/backend/internal/scrapers"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type TenderRepository interface {
	Create(ctx context.Context, tender *models.Tender) error
	ExistsByReference(ctx context.Context, source, reference string) (bool, error)
	GetBySource(ctx context.Context, source string) ([]models.Tender, error)
}

type SearchTermProvider interface {
	GetAll(ctx context.Context) ([]models.SearchTerm, error)
}

type ScraperRegistry interface {
	Resolve(tenderType string) ([]scrapers.Scraper, error)
}

type scrapeService struct {
	registry ScraperRegistry
	tenders  TenderRepository
	terms    SearchTermProvider
	logger   *zap.Logger
}

// NewScrapeService creates a new scrape service
func NewScrapeService(registry ScraperRegistry, tenders TenderRepository, terms SearchTermProvider, logger *zap.Logger) *scrapeService {
	return &scrapeService{
		registry: registry,
		tenders:  tenders,
		terms:    terms,
		logger:   logger,
	}
}

// Run scrapes the sources selected by tenderType, filters results against the
// configured search terms, and stores tenders not seen before. Sources run
// concurrently; the first scrape failure cancels the rest.
func (s *scrapeService) Run(ctx context.Context, tenderType string) error {
	selected, err := s.registry.Resolve(tenderType)
	if err != nil {
		return err
	}

	terms, err := s.terms.GetAll(ctx)
	if err != nil {
		s.logger.Warn("failed to load search terms, keeping all tenders", zap.Error(err))
		terms = nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sc := range selected {
		sc := sc
		g.Go(func() error {
			tenders, err := sc.Scrape(gctx)
			if err != nil {
				return fmt.Errorf("%s scrape failed: %w", sc.Name(), err)
			}
			s.store(gctx, sc.Name(), filterByTerms(tenders, terms))
			return nil
		})
	}

	return g.Wait()
}

// List returns the stored tenders for the sources selected by tenderType,
// newest first per source
func (s *scrapeService) List(ctx context.Context, tenderType string) ([]models.Tender, error) {
	selected, err := s.registry.Resolve(tenderType)
	if err != nil {
		return nil, err
	}

	tenders := make([]models.Tender, 0)
	for _, sc := range selected {
		batch, err := s.tenders.GetBySource(ctx, sc.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to list %s tenders: %w", sc.Name(), err)
		}
		tenders = append(tenders, batch...)
	}
	return tenders, nil
}

// store inserts tenders that are not already present. Individual insert
// failures are logged and skipped so one bad row never aborts a run.
func (s *scrapeService) store(ctx context.Context, source string, tenders []models.Tender) {
	inserted := 0
	for i := range tenders {
		tender := &tenders[i]

		exists, err := s.tenders.ExistsByReference(ctx, source, tender.Reference)
		if err != nil {
			s.logger.Error("tender lookup failed",
				zap.String("reference", tender.Reference), zap.Error(err))
			continue
		}
		if exists {
			continue
		}

		if err := s.tenders.Create(ctx, tender); err != nil {
			s.logger.Error("tender insert failed",
				zap.String("reference", tender.Reference), zap.Error(err))
			continue
		}
		inserted++
	}

	s.logger.Info("stored scraped tenders",
		zap.String("source", source),
		zap.Int("scraped", len(tenders)),
		zap.Int("inserted", inserted))
}

// filterByTerms keeps tenders whose title mentions any search term. An empty
// term list keeps everything.
func filterByTerms(tenders []models.Tender, terms []models.SearchTerm) []models.Tender {
	if len(terms) == 0 {
		return tenders
	}

	matched := make([]models.Tender, 0, len(tenders))
	for _, tender := range tenders {
		title := strings.ToLower(tender.Title)
		for _, term := range terms {
			if strings.Contains(title, strings.ToLower(term.Term)) {
				matched = append(matched, tender)
				break
			}
		}
	}
	return matched
}
