package model

import (
	"fmt"
	"time"
)

// StoredFile is a file persisted under its generated storage name.
// Files are immutable once written; the only mutation is removal.
type StoredFile struct {
	Name        string
	ContentType string
	Size        int64
	Text        string
}

// UploadDescriptor is returned to the client after a successful upload.
// Size is in kilobytes (bytes / 1024), not rounded.
type UploadDescriptor struct {
	Filename    string  `json:"filename"`
	FullURL     string  `json:"fullUrl"`
	DownloadURL string  `json:"downloadUrl"`
	FileType    string  `json:"fileType"`
	Size        float64 `json:"size"`
	Content     string  `json:"content,omitempty"`
}

// Origin is the scheme/host/port triple under which the API is reachable.
// It is supplied by the HTTP layer and only used to build access URLs.
type Origin struct {
	Scheme string
	Host   string
	Port   int
}

// FullURL returns the public URL of a stored file.
func (o Origin) FullURL(name string) string {
	return fmt.Sprintf("%s://%s:%d/images/%s", o.Scheme, o.Host, o.Port, name)
}

// DownloadURL returns the URL of the download endpoint for a stored file.
func (o Origin) DownloadURL(name string) string {
	return fmt.Sprintf("%s://%s:%d/api/v1/files/download/%s", o.Scheme, o.Host, o.Port, name)
}

// UploadRecord is the ledger entry written for every upload when a database is configured.
// This is a pure domain model with no database-specific tags.
type UploadRecord struct {
	StorageName      string    `json:"storage_name"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	CreatedAt        time.Time `json:"created_at"`
}

// Descriptor describes f as seen from origin o.
func (f StoredFile) Descriptor(o Origin) UploadDescriptor {
	return UploadDescriptor{
		Filename:    f.Name,
		FullURL:     o.FullURL(f.Name),
		DownloadURL: o.DownloadURL(f.Name),
		FileType:    f.ContentType,
		Size:        float64(f.Size) / 1024.0,
		Content:     f.Text,
	}
}
