package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenderwatch/backend/internal/models"
)

func setupTenderRepository(t *testing.T) (*tenderRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewTenderRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestTenderRepository_Create(t *testing.T) {
	deadline := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedID    int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO tenders`).
					WillReturnResult(sqlmock.NewResult(11, 1))
			},
			expectedID: 11,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO tenders`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupTenderRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			tender := &models.Tender{
				Title:     "Supply of solar panels",
				Reference: "UNDP-KEN-00123",
				Deadline:  &deadline,
				SourceURL: "https://procurement-notices.undp.org/view_notice.cfm?notice_id=123",
				Format:    "notice",
				Source:    "UNDP",
			}
			err := repo.Create(context.Background(), tender)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedID, tender.ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTenderRepository_ExistsByReference(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(sqlmock.Sqlmock)
		expectedError  bool
		expectedExists bool
	}{
		{
			name: "exists",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"exists"}).AddRow(true)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("UNDP", "UNDP-KEN-00123").
					WillReturnRows(rows)
			},
			expectedExists: true,
		},
		{
			name: "does not exist",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"exists"}).AddRow(false)
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("UNDP", "UNDP-KEN-00123").
					WillReturnRows(rows)
			},
			expectedExists: false,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("UNDP", "UNDP-KEN-00123").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupTenderRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			exists, err := repo.ExistsByReference(context.Background(), "UNDP", "UNDP-KEN-00123")

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedExists, exists)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTenderRepository_GetBySource(t *testing.T) {
	deadline := time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tenderColumns := []string{"id", "title", "reference", "deadline", "source_url", "format", "source", "created_at"}

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedCount int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(tenderColumns).
					AddRow(1, "Supply of solar panels", "UNDP-KEN-00123", deadline, "https://example.org/1", "notice", "UNDP", created).
					AddRow(2, "Borehole drilling", "UNDP-KEN-00124", nil, "https://example.org/2", "pdf", "UNDP", created)
				mock.ExpectQuery(`FROM tenders`).
					WithArgs("UNDP").
					WillReturnRows(rows)
			},
			expectedCount: 2,
		},
		{
			name: "empty result",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(tenderColumns)
				mock.ExpectQuery(`FROM tenders`).
					WithArgs("UNDP").
					WillReturnRows(rows)
			},
			expectedCount: 0,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM tenders`).
					WithArgs("UNDP").
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupTenderRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			result, err := repo.GetBySource(context.Background(), "UNDP")

			if tt.expectedError {
				assert.Error(t, err)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Len(t, result, tt.expectedCount)
				if tt.expectedCount == 2 {
					assert.Nil(t, result[1].Deadline)
					require.NotNil(t, result[0].Deadline)
					assert.True(t, deadline.Equal(*result[0].Deadline))
				}
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
