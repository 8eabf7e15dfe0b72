package repository

import (
	"context"

	"fileapi/internal/model"
)

// UploadRepository persists the upload ledger using SQL queries only.
// No business logic here, strictly persistence operations.
type UploadRepository interface {
	// Create inserts a new upload record and returns the stored row.
	Create(ctx context.Context, rec *model.UploadRecord) (*model.UploadRecord, error)

	// FindByName returns the record of a storage name, or sql.ErrNoRows.
	FindByName(ctx context.Context, storageName string) (*model.UploadRecord, error)

	// Delete removes a record. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, storageName string) error
}
