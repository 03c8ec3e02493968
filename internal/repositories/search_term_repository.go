package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tenderwatch/backend/internal/models"
)

type searchTermRepository struct {
	db *sql.DB
}

// NewSearchTermRepository creates a new search term repository
func NewSearchTermRepository(db *sql.DB) *searchTermRepository {
	return &searchTermRepository{db: db}
}

// Create inserts a single search term and returns its id
func (r *searchTermRepository) Create(ctx context.Context, term string) (int, error) {
	query := `INSERT INTO search_terms (term) VALUES (?)`

	result, err := r.db.ExecContext(ctx, query, term)
	if err != nil {
		return 0, fmt.Errorf("failed to create search term: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return int(id), nil
}

// GetAll retrieves every search term
func (r *searchTermRepository) GetAll(ctx context.Context) ([]models.SearchTerm, error) {
	query := `SELECT id, term FROM search_terms ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query search terms: %w", err)
	}
	defer rows.Close()

	var terms []models.SearchTerm
	for rows.Next() {
		var term models.SearchTerm
		if err := rows.Scan(&term.ID, &term.Term); err != nil {
			return nil, fmt.Errorf("failed to scan search term: %w", err)
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return terms, nil
}

// Update rewrites a search term
func (r *searchTermRepository) Update(ctx context.Context, id int, term string) error {
	query := `UPDATE search_terms SET term = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, term, id)
	if err != nil {
		return fmt.Errorf("failed to update search term: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrTermNotFound
	}

	return nil
}

// CreateBulk inserts a batch of search terms in one transaction
func (r *searchTermRepository) CreateBulk(ctx context.Context, terms []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO search_terms (term) VALUES (?)`
	for _, term := range terms {
		if _, err := tx.ExecContext(ctx, query, term); err != nil {
			return fmt.Errorf("failed to create search term: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpdateBulk rewrites a batch of search terms in one transaction
func (r *searchTermRepository) UpdateBulk(ctx context.Context, terms []models.SearchTerm) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE search_terms SET term = ? WHERE id = ?`
	for _, term := range terms {
		if _, err := tx.ExecContext(ctx, query, term.Term, term.ID); err != nil {
			return fmt.Errorf("failed to update search term: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Delete removes a search term
func (r *searchTermRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM search_terms WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete search term: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrTermNotFound
	}

	return nil
}
