package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"fileapi/internal/extract"
	"fileapi/internal/model"
	"fileapi/internal/repository"
	"fileapi/internal/storage"
)

const (
	contentTypePDF = "application/pdf"
	contentTypeZip = "application/zip"
)

// allowedContentTypes is the upload allow-list.
var allowedContentTypes = map[string]struct{}{
	"image/jpeg":         {},
	"image/png":          {},
	"image/gif":          {},
	contentTypePDF:       {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

var tracer = otel.Tracer("fileapi/internal/service")

// UploadFile is one file of an upload request.
type UploadFile struct {
	Content          []byte
	ContentType      string
	OriginalFilename string
}

// Download is a streamable file handed back to the HTTP layer.
// The caller must close Body once the response has been written.
type Download struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// FileService defines the use cases for handling stored files.
type FileService interface {
	// ValidateAndStore checks the content type against the allow-list and persists content
	// under a freshly generated storage name, which it returns.
	ValidateAndStore(ctx context.Context, content []byte, contentType, originalFilename string) (string, error)

	// Describe builds the upload descriptor. PDF content is extracted to text, which is saved
	// as a sibling .txt file and included in the descriptor.
	Describe(ctx context.Context, storedName, contentType string, size int64, content []byte, origin model.Origin) (*model.UploadDescriptor, error)

	// Upload stores one file, describes it and records it in the ledger if one is configured.
	Upload(ctx context.Context, f UploadFile, origin model.Origin) (*model.UploadDescriptor, error)

	// UploadMany uploads files in order; the first failure rolls back the files already stored.
	UploadMany(ctx context.Context, files []UploadFile, origin model.Origin) ([]model.UploadDescriptor, error)

	// List returns the names of all stored files in no particular order.
	List(ctx context.Context) ([]string, error)

	// Open returns a stored file ready for streaming.
	Open(ctx context.Context, name string) (*Download, error)

	// Archive bundles the named files into a temporary zip archive, deleted when Body is closed.
	Archive(ctx context.Context, names []string) (*Download, error)

	// Delete removes a stored file.
	Delete(ctx context.Context, name string) error

	// Record returns the ledger entry of a stored file.
	Record(ctx context.Context, name string) (*model.UploadRecord, error)

	// Ping checks that the storage backend is reachable.
	Ping(ctx context.Context) error
}

// fileService is a concrete implementation of FileService.
type fileService struct {
	store     storage.Storage
	repo      repository.UploadRepository
	extractor extract.TextExtractor
	tempDir   string
	now       func() time.Time
}

// NewFileService constructs a new FileService. repo may be nil, which disables the upload ledger.
// Temporary archives are created in tempDir, or the OS default when empty.
func NewFileService(store storage.Storage, repo repository.UploadRepository, extractor extract.TextExtractor, tempDir string) FileService {
	return &fileService{
		store:     store,
		repo:      repo,
		extractor: extractor,
		tempDir:   tempDir,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// extensionOf returns the text after the last dot of the base name.
func extensionOf(originalFilename string) (string, error) {
	base := filepath.Base(strings.ReplaceAll(originalFilename, `\`, "/"))
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return "", fmt.Errorf("%w: filename %q has no extension", ErrInvalidInput, originalFilename)
	}
	ext := base[i+1:]
	for _, r := range ext {
		ok := r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_'
		if !ok {
			return "", fmt.Errorf("%w: filename %q has an invalid extension", ErrInvalidInput, originalFilename)
		}
	}
	return ext, nil
}

func (s *fileService) ValidateAndStore(ctx context.Context, content []byte, contentType, originalFilename string) (string, error) {
	ctx, span := tracer.Start(ctx, "FileService.ValidateAndStore", trace.WithAttributes(
		attribute.String("file.content_type", contentType),
		attribute.Int("file.size", len(content)),
	))
	defer span.End()

	if _, ok := allowedContentTypes[contentType]; !ok {
		return "", fmt.Errorf("%w: %s not allowed", ErrUnsupportedMediaType, contentType)
	}
	ext, err := extensionOf(originalFilename)
	if err != nil {
		return "", err
	}
	// A PDF stored as .txt would share its name with the extracted text sibling.
	if contentType == contentTypePDF && strings.EqualFold(ext, "txt") {
		return "", fmt.Errorf("%w: pdf %q cannot use the .txt extension", ErrInvalidInput, originalFilename)
	}

	name := uuid.New().String() + "." + ext
	if _, err := s.store.Put(ctx, name, bytes.NewReader(content), storage.PutObjectOptions{
		Size:        int64(len(content)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	}); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("%w: store %s: %v", ErrIO, name, err)
	}
	span.SetAttributes(attribute.String("file.name", name))
	return name, nil
}

func (s *fileService) Describe(ctx context.Context, storedName, contentType string, size int64, content []byte, origin model.Origin) (*model.UploadDescriptor, error) {
	f := model.StoredFile{Name: storedName, ContentType: contentType, Size: size}

	if contentType == contentTypePDF {
		ctx, span := tracer.Start(ctx, "FileService.ExtractText")
		text, err := s.extractor.Extract(ctx, content)
		if err != nil {
			span.RecordError(err)
			span.End()
			return nil, fmt.Errorf("%w: %s: %v", ErrExtraction, storedName, err)
		}
		txtName := textSibling(storedName)
		_, err = s.store.Put(ctx, txtName, strings.NewReader(text), storage.PutObjectOptions{
			Size:        int64(len(text)),
			ContentType: "text/plain; charset=utf-8",
		})
		span.End()
		if err != nil {
			return nil, fmt.Errorf("%w: store %s: %v", ErrExtraction, txtName, err)
		}
		f.Text = text
	}

	d := f.Descriptor(origin)
	return &d, nil
}

// textSibling names the text file holding the extracted content of a document.
func textSibling(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".txt"
}

// Upload stores the file, describes it, then saves the ledger record.
// If describing or the ledger save fails, the stored objects are rolled back.
func (s *fileService) Upload(ctx context.Context, f UploadFile, origin model.Origin) (*model.UploadDescriptor, error) {
	name, err := s.ValidateAndStore(ctx, f.Content, f.ContentType, f.OriginalFilename)
	if err != nil {
		return nil, err
	}
	size := int64(len(f.Content))

	desc, err := s.Describe(ctx, name, f.ContentType, size, f.Content, origin)
	if err != nil {
		return nil, s.rollback(ctx, err, s.storedNames(name, f.ContentType)...)
	}

	if s.repo != nil {
		_, err := s.repo.Create(ctx, &model.UploadRecord{
			StorageName:      name,
			OriginalFilename: f.OriginalFilename,
			ContentType:      f.ContentType,
			Size:             size,
			CreatedAt:        s.now(),
		})
		if err != nil {
			return nil, s.rollback(ctx, fmt.Errorf("db save failed: %w", err), s.storedNames(name, f.ContentType)...)
		}
	}
	return desc, nil
}

func (s *fileService) UploadMany(ctx context.Context, files []UploadFile, origin model.Origin) ([]model.UploadDescriptor, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", ErrInvalidInput)
	}
	out := make([]model.UploadDescriptor, 0, len(files))
	for i, f := range files {
		d, err := s.Upload(ctx, f, origin)
		if err != nil {
			var (
				stored       []string
				ledgerFailed []string
			)
			for j, prev := range out {
				stored = append(stored, s.storedNames(prev.Filename, files[j].ContentType)...)
				if s.repo != nil {
					if derr := s.repo.Delete(ctx, prev.Filename); derr != nil {
						ledgerFailed = append(ledgerFailed, fmt.Sprintf("%s: %v", prev.Filename, derr))
					}
				}
			}
			cause := fmt.Errorf("file %d (%s): %w", i, f.OriginalFilename, err)
			if len(ledgerFailed) > 0 {
				cause = fmt.Errorf("%w; rollback record delete failed: %s", cause, strings.Join(ledgerFailed, ", "))
			}
			return nil, s.rollback(ctx, cause, stored...)
		}
		out = append(out, *d)
	}
	return out, nil
}

// storedNames lists the objects an upload of the given type leaves behind.
func (s *fileService) storedNames(name, contentType string) []string {
	if contentType == contentTypePDF {
		return []string{name, textSibling(name)}
	}
	return []string{name}
}

// rollback removes stored objects after a failed upload and folds delete failures into cause.
func (s *fileService) rollback(ctx context.Context, cause error, names ...string) error {
	var failed []string
	for _, n := range names {
		if err := s.store.Delete(ctx, n); err != nil && !errors.Is(err, storage.ErrNotFound) {
			failed = append(failed, fmt.Sprintf("%s: %v", n, err))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w; rollback delete failed: %s", cause, strings.Join(failed, ", "))
	}
	return cause
}

func (s *fileService) List(ctx context.Context) ([]string, error) {
	names, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list files: %v", ErrIO, err)
	}
	return names, nil
}

func (s *fileService) Open(ctx context.Context, name string) (*Download, error) {
	rc, info, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, mapStorageErr(name, err)
	}
	return &Download{
		Body:        rc,
		Filename:    name,
		ContentType: info.ContentType,
		Size:        info.Size,
	}, nil
}

func (s *fileService) Archive(ctx context.Context, names []string) (*Download, error) {
	ctx, span := tracer.Start(ctx, "FileService.Archive", trace.WithAttributes(attribute.Int("archive.entries", len(names))))
	defer span.End()

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one filename is required", ErrInvalidInput)
	}
	// Check every member up front so a missing file never creates a temp archive.
	for _, n := range names {
		if _, err := s.store.Stat(ctx, n); err != nil {
			return nil, mapStorageErr(n, err)
		}
	}

	tmp, err := os.CreateTemp(s.tempDir, "files-*.zip")
	if err != nil {
		return nil, fmt.Errorf("%w: create archive: %v", ErrIO, err)
	}
	a := &tempArchive{File: tmp}

	size, err := s.writeArchive(ctx, tmp, names)
	if err != nil {
		_ = a.Close()
		span.RecordError(err)
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("%w: rewind archive: %v", ErrIO, err)
	}

	return &Download{
		Body:        a,
		Filename:    filepath.Base(tmp.Name()),
		ContentType: contentTypeZip,
		Size:        size,
	}, nil
}

// writeArchive copies each named file into its own zip entry and returns the archive size.
func (s *fileService) writeArchive(ctx context.Context, w *os.File, names []string) (int64, error) {
	zw := zip.NewWriter(w)
	for _, n := range names {
		if err := s.copyEntry(ctx, zw, n); err != nil {
			return 0, err
		}
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("%w: finish archive: %v", ErrIO, err)
	}
	st, err := w.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: stat archive: %v", ErrIO, err)
	}
	return st.Size(), nil
}

func (s *fileService) copyEntry(ctx context.Context, zw *zip.Writer, name string) error {
	rc, _, err := s.store.Get(ctx, name)
	if err != nil {
		return mapStorageErr(name, err)
	}
	defer rc.Close()

	ew, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("%w: add %s to archive: %v", ErrIO, name, err)
	}
	if _, err := io.Copy(ew, rc); err != nil {
		return fmt.Errorf("%w: copy %s into archive: %v", ErrIO, name, err)
	}
	return nil
}

// tempArchive removes its backing file once closed.
type tempArchive struct {
	*os.File
}

func (a *tempArchive) Close() error {
	cerr := a.File.Close()
	rerr := os.Remove(a.File.Name())
	if rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
		return rerr
	}
	if errors.Is(cerr, os.ErrClosed) {
		return nil
	}
	return cerr
}

func (s *fileService) Delete(ctx context.Context, name string) error {
	if err := s.store.Delete(ctx, name); err != nil {
		return mapStorageErr(name, err)
	}
	if s.repo != nil {
		if err := s.repo.Delete(ctx, name); err != nil {
			return fmt.Errorf("delete record: %w", err)
		}
	}
	return nil
}

func (s *fileService) Record(ctx context.Context, name string) (*model.UploadRecord, error) {
	if s.repo == nil {
		return nil, ErrLedgerDisabled
	}
	if err := storage.ValidateKey(name); err != nil {
		return nil, fmt.Errorf("%w: invalid filename %q", ErrInvalidInput, name)
	}
	rec, err := s.repo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return rec, nil
}

func (s *fileService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// mapStorageErr converts backend errors into service error kinds.
func mapStorageErr(name string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	case errors.Is(err, storage.ErrInvalidKey):
		return fmt.Errorf("%w: invalid filename %q", ErrInvalidInput, name)
	default:
		return fmt.Errorf("%w: %s: %v", ErrIO, name, err)
	}
}
