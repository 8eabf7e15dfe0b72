package service

import "errors"

// Error kinds returned by FileService. Callers match them with errors.Is;
// the wrapping error carries the human-readable detail.
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("file not found")
	ErrExtraction           = errors.New("text extraction failed")
	ErrIO                   = errors.New("storage i/o failure")
	ErrLedgerDisabled       = errors.New("upload ledger is not configured")
)
