package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenderwatch/backend/internal/models"
	"go.uber.org/zap"
)

// mockSearchTermRepository is a mock implementation of SearchTermRepository
type mockSearchTermRepository struct {
	terms []models.SearchTerm
	id    int
	err   error

	created     []string
	updated     []models.SearchTerm
	deletedID   int
	bulkCreated []string
}

func (m *mockSearchTermRepository) Create(ctx context.Context, term string) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.created = append(m.created, term)
	return m.id, nil
}

func (m *mockSearchTermRepository) GetAll(ctx context.Context) ([]models.SearchTerm, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.terms, nil
}

func (m *mockSearchTermRepository) Update(ctx context.Context, id int, term string) error {
	if m.err != nil {
		return m.err
	}
	m.updated = append(m.updated, models.SearchTerm{ID: id, Term: term})
	return nil
}

func (m *mockSearchTermRepository) CreateBulk(ctx context.Context, terms []string) error {
	if m.err != nil {
		return m.err
	}
	m.bulkCreated = terms
	return nil
}

func (m *mockSearchTermRepository) UpdateBulk(ctx context.Context, terms []models.SearchTerm) error {
	if m.err != nil {
		return m.err
	}
	m.updated = terms
	return nil
}

func (m *mockSearchTermRepository) Delete(ctx context.Context, id int) error {
	if m.err != nil {
		return m.err
	}
	m.deletedID = id
	return nil
}

// mockSearchTermCache is a mock implementation of SearchTermCache
type mockSearchTermCache struct {
	terms       []models.SearchTerm
	hit         bool
	getErr      error
	setErr      error
	invErr      error
	setCalled   bool
	invalidated bool
}

func (m *mockSearchTermCache) Get(ctx context.Context) ([]models.SearchTerm, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	return m.terms, m.hit, nil
}

func (m *mockSearchTermCache) Set(ctx context.Context, terms []models.SearchTerm) error {
	m.setCalled = true
	return m.setErr
}

func (m *mockSearchTermCache) Invalidate(ctx context.Context) error {
	m.invalidated = true
	return m.invErr
}

func TestSearchTermService_GetAll(t *testing.T) {
	dbTerms := []models.SearchTerm{{ID: 1, Term: "water"}}
	cachedTerms := []models.SearchTerm{{ID: 2, Term: "energy"}}

	tests := []struct {
		name          string
		repo          *mockSearchTermRepository
		cache         *mockSearchTermCache
		expectedTerms []models.SearchTerm
		expectedError bool
		expectSet     bool
	}{
		{
			name:          "cache hit skips database",
			repo:          &mockSearchTermRepository{err: errors.New("should not be called")},
			cache:         &mockSearchTermCache{terms: cachedTerms, hit: true},
			expectedTerms: cachedTerms,
		},
		{
			name:          "cache miss reads database and fills cache",
			repo:          &mockSearchTermRepository{terms: dbTerms},
			cache:         &mockSearchTermCache{},
			expectedTerms: dbTerms,
			expectSet:     true,
		},
		{
			name:          "cache failure falls back to database",
			repo:          &mockSearchTermRepository{terms: dbTerms},
			cache:         &mockSearchTermCache{getErr: errors.New("redis down")},
			expectedTerms: dbTerms,
			expectSet:     true,
		},
		{
			name:          "database error",
			repo:          &mockSearchTermRepository{err: errors.New("database error")},
			cache:         &mockSearchTermCache{},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewSearchTermService(tt.repo, tt.cache, zap.NewNop())

			terms, err := svc.GetAll(context.Background())

			if tt.expectedError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedTerms, terms)
			assert.Equal(t, tt.expectSet, tt.cache.setCalled)
		})
	}
}

func TestSearchTermService_Add(t *testing.T) {
	tests := []struct {
		name            string
		term            string
		repo            *mockSearchTermRepository
		expectedError   error
		expectedID      int
		expectedCreated string
	}{
		{
			name:            "success",
			term:            "water sanitation",
			repo:            &mockSearchTermRepository{id: 5},
			expectedID:      5,
			expectedCreated: "water sanitation",
		},
		{
			name:            "term is trimmed",
			term:            "  solar  ",
			repo:            &mockSearchTermRepository{id: 6},
			expectedID:      6,
			expectedCreated: "solar",
		},
		{
			name:          "empty term",
			term:          "   ",
			repo:          &mockSearchTermRepository{},
			expectedError: models.ErrTermRequired,
		},
		{
			name:          "repository error",
			term:          "water",
			repo:          &mockSearchTermRepository{err: errors.New("database error")},
			expectedError: errors.New("database error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &mockSearchTermCache{}
			svc := NewSearchTermService(tt.repo, cache, zap.NewNop())

			id, err := svc.Add(context.Background(), tt.term)

			if tt.expectedError != nil {
				assert.Error(t, err)
				if errors.Is(tt.expectedError, models.ErrTermRequired) {
					assert.ErrorIs(t, err, models.ErrTermRequired)
				}
				assert.False(t, cache.invalidated)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, id)
			assert.True(t, cache.invalidated)
			require.Len(t, tt.repo.created, 1)
			assert.Equal(t, tt.expectedCreated, tt.repo.created[0])
		})
	}
}

func TestSearchTermService_Edit(t *testing.T) {
	t.Run("success invalidates cache", func(t *testing.T) {
		repo := &mockSearchTermRepository{}
		cache := &mockSearchTermCache{}
		svc := NewSearchTermService(repo, cache, zap.NewNop())

		err := svc.Edit(context.Background(), 2, "renewable energy")
		require.NoError(t, err)
		assert.True(t, cache.invalidated)
		require.Len(t, repo.updated, 1)
		assert.Equal(t, models.SearchTerm{ID: 2, Term: "renewable energy"}, repo.updated[0])
	})

	t.Run("empty term", func(t *testing.T) {
		svc := NewSearchTermService(&mockSearchTermRepository{}, &mockSearchTermCache{}, zap.NewNop())

		err := svc.Edit(context.Background(), 2, "")
		assert.ErrorIs(t, err, models.ErrTermRequired)
	})

	t.Run("not found passes through", func(t *testing.T) {
		repo := &mockSearchTermRepository{err: models.ErrTermNotFound}
		svc := NewSearchTermService(repo, &mockSearchTermCache{}, zap.NewNop())

		err := svc.Edit(context.Background(), 99, "water")
		assert.ErrorIs(t, err, models.ErrTermNotFound)
	})
}

func TestSearchTermService_AddBulk(t *testing.T) {
	tests := []struct {
		name          string
		terms         []string
		expectedError error
		expectedBulk  []string
	}{
		{
			name:         "success with trimming",
			terms:        []string{" water ", "energy"},
			expectedBulk: []string{"water", "energy"},
		},
		{
			name:          "empty list",
			terms:         nil,
			expectedError: models.ErrTermRequired,
		},
		{
			name:          "blank entry rejects whole batch",
			terms:         []string{"water", "  "},
			expectedError: models.ErrTermRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockSearchTermRepository{}
			cache := &mockSearchTermCache{}
			svc := NewSearchTermService(repo, cache, zap.NewNop())

			err := svc.AddBulk(context.Background(), tt.terms)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, models.ErrTermRequired)
				assert.False(t, cache.invalidated)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedBulk, repo.bulkCreated)
			assert.True(t, cache.invalidated)
		})
	}
}

func TestSearchTermService_EditBulk(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := &mockSearchTermRepository{}
		cache := &mockSearchTermCache{}
		svc := NewSearchTermService(repo, cache, zap.NewNop())

		err := svc.EditBulk(context.Background(), []models.SearchTerm{
			{ID: 1, Term: " water "},
			{ID: 2, Term: "energy"},
		})
		require.NoError(t, err)
		assert.Equal(t, "water", repo.updated[0].Term)
		assert.True(t, cache.invalidated)
	})

	t.Run("blank entry", func(t *testing.T) {
		svc := NewSearchTermService(&mockSearchTermRepository{}, &mockSearchTermCache{}, zap.NewNop())

		err := svc.EditBulk(context.Background(), []models.SearchTerm{{ID: 1, Term: ""}})
		assert.ErrorIs(t, err, models.ErrTermRequired)
	})
}

func TestSearchTermService_Delete(t *testing.T) {
	t.Run("success invalidates cache", func(t *testing.T) {
		repo := &mockSearchTermRepository{}
		cache := &mockSearchTermCache{}
		svc := NewSearchTermService(repo, cache, zap.NewNop())

		err := svc.Delete(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, 3, repo.deletedID)
		assert.True(t, cache.invalidated)
	})

	t.Run("not found passes through", func(t *testing.T) {
		repo := &mockSearchTermRepository{err: models.ErrTermNotFound}
		cache := &mockSearchTermCache{}
		svc := NewSearchTermService(repo, cache, zap.NewNop())

		err := svc.Delete(context.Background(), 99)
		assert.ErrorIs(t, err, models.ErrTermNotFound)
		assert.False(t, cache.invalidated)
	})
}
