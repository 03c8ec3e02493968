package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tenderwatch/backend/internal/models"
	"go.uber.org/zap"
)

type SearchTermRepository interface {
	Create(ctx context.Context, term string) (int, error)
	GetAll(ctx context.Context) ([]models.SearchTerm, error)
	Update(ctx context.Context, id int, term string) error
	CreateBulk(ctx context.Context, terms []string) error
	UpdateBulk(ctx context.Context, terms []models.SearchTerm) error
	Delete(ctx context.Context, id int) error
}

type SearchTermCache interface {
	Get(ctx context.Context) ([]models.SearchTerm, bool, error)
	Set(ctx context.Context, terms []models.SearchTerm) error
	Invalidate(ctx context.Context) error
}

type searchTermService struct {
	repo   SearchTermRepository
	cache  SearchTermCache
	logger *zap.Logger
}

// NewSearchTermService creates a new search term service
func NewSearchTermService(repo SearchTermRepository, cache SearchTermCache, logger *zap.Logger) *searchTermService {
	return &searchTermService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// GetAll returns the term list, preferring the cache. Cache failures fall
// back to the database.
func (s *searchTermService) GetAll(ctx context.Context) ([]models.SearchTerm, error) {
	terms, hit, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("search term cache read failed", zap.Error(err))
	} else if hit {
		return terms, nil
	}

	terms, err = s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get search terms: %w", err)
	}

	if err := s.cache.Set(ctx, terms); err != nil {
		s.logger.Warn("search term cache write failed", zap.Error(err))
	}
	return terms, nil
}

// Add stores one term and returns its id
func (s *searchTermService) Add(ctx context.Context, term string) (int, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return 0, models.ErrTermRequired
	}

	id, err := s.repo.Create(ctx, term)
	if err != nil {
		return 0, fmt.Errorf("failed to add search term: %w", err)
	}

	s.invalidate(ctx)
	return id, nil
}

// Edit rewrites one term
func (s *searchTermService) Edit(ctx context.Context, id int, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return models.ErrTermRequired
	}

	if err := s.repo.Update(ctx, id, term); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// AddBulk stores a batch of terms
func (s *searchTermService) AddBulk(ctx context.Context, terms []string) error {
	if len(terms) == 0 {
		return models.ErrTermRequired
	}
	cleaned := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term == "" {
			return models.ErrTermRequired
		}
		cleaned = append(cleaned, term)
	}

	if err := s.repo.CreateBulk(ctx, cleaned); err != nil {
		return fmt.Errorf("failed to add search terms: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

// EditBulk rewrites a batch of terms
func (s *searchTermService) EditBulk(ctx context.Context, terms []models.SearchTerm) error {
	if len(terms) == 0 {
		return models.ErrTermRequired
	}
	for i := range terms {
		terms[i].Term = strings.TrimSpace(terms[i].Term)
		if terms[i].Term == "" {
			return models.ErrTermRequired
		}
	}

	if err := s.repo.UpdateBulk(ctx, terms); err != nil {
		return fmt.Errorf("failed to update search terms: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

// Delete removes one term
func (s *searchTermService) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

func (s *searchTermService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("search term cache invalidation failed", zap.Error(err))
	}
}
