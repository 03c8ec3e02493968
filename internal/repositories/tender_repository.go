package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tenderwatch/backend/internal/models"
)

type tenderRepository struct {
	db *sql.DB
}

// NewTenderRepository creates a new tender repository
func NewTenderRepository(db *sql.DB) *tenderRepository {
	return &tenderRepository{db: db}
}

// Create inserts a scraped tender
func (r *tenderRepository) Create(ctx context.Context, tender *models.Tender) error {
	query := `
		INSERT INTO tenders (title, reference, deadline, source_url, format, source)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		tender.Title, tender.Reference, tender.Deadline,
		tender.SourceURL, tender.Format, tender.Source)
	if err != nil {
		return fmt.Errorf("failed to create tender: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	tender.ID = int(id)
	return nil
}

// ExistsByReference reports whether a tender with the same source and
// reference has already been stored
func (r *tenderRepository) ExistsByReference(ctx context.Context, source, reference string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM tenders WHERE source = ? AND reference = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, source, reference).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check tender existence: %w", err)
	}

	return exists, nil
}

// GetBySource retrieves the stored tenders for one source, newest first
func (r *tenderRepository) GetBySource(ctx context.Context, source string) ([]models.Tender, error) {
	query := `
		SELECT id, title, reference, deadline, source_url, format, source, created_at
		FROM tenders
		WHERE source = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, source)
	if err != nil {
		return nil, fmt.Errorf("failed to query tenders: %w", err)
	}
	defer rows.Close()

	var tenders []models.Tender
	for rows.Next() {
		var t models.Tender
		err := rows.Scan(&t.ID, &t.Title, &t.Reference, &t.Deadline,
			&t.SourceURL, &t.Format, &t.Source, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tender: %w", err)
		}
		tenders = append(tenders, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return tenders, nil
}
