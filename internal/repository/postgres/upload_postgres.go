package postgres

import (
	"context"
	"database/sql"

	"fileapi/internal/model"
	"fileapi/internal/repository"
)

// UploadPostgres is a PostgreSQL implementation of repository.UploadRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type UploadPostgres struct {
	db *sql.DB
}

// NewUploadPostgres creates a new UploadPostgres repository.
func NewUploadPostgres(db *sql.DB) *UploadPostgres {
	return &UploadPostgres{db: db}
}

var _ repository.UploadRepository = (*UploadPostgres)(nil)

// Create inserts a new upload row and returns the stored record.
func (r *UploadPostgres) Create(ctx context.Context, rec *model.UploadRecord) (*model.UploadRecord, error) {
	const q = `
		INSERT INTO uploads (storage_name, original_filename, content_type, size, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING storage_name, original_filename, content_type, size, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		rec.StorageName,
		rec.OriginalFilename,
		rec.ContentType,
		rec.Size,
		rec.CreatedAt,
	)
	var out model.UploadRecord
	if err := row.Scan(
		&out.StorageName,
		&out.OriginalFilename,
		&out.ContentType,
		&out.Size,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByName fetches a single upload record by its storage name.
func (r *UploadPostgres) FindByName(ctx context.Context, storageName string) (*model.UploadRecord, error) {
	const q = `
		SELECT storage_name, original_filename, content_type, size, created_at
		FROM uploads
		WHERE storage_name = $1
	`
	var rec model.UploadRecord
	if err := r.db.QueryRowContext(ctx, q, storageName).Scan(
		&rec.StorageName,
		&rec.OriginalFilename,
		&rec.ContentType,
		&rec.Size,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes an upload record. It does not return an error if the row does not exist.
func (r *UploadPostgres) Delete(ctx context.Context, storageName string) error {
	const q = `DELETE FROM uploads WHERE storage_name = $1`
	_, err := r.db.ExecContext(ctx, q, storageName)
	return err
}
