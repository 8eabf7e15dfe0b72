package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const defaultContentType = "application/octet-stream"

// localStorage keeps every object as a regular file directly inside dir.
// The directory is the only source of truth: nothing is cached between calls.
type localStorage struct {
	dir string
}

// NewLocal creates a storage backend rooted at dir, creating the directory if missing.
func NewLocal(dir string) (Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &localStorage{dir: abs}, nil
}

// resolve maps a key to a path inside dir.
func (l *localStorage) resolve(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	p := filepath.Join(l.dir, key)
	if filepath.Dir(p) != l.dir {
		return "", ErrInvalidKey
	}
	return p, nil
}

func (l *localStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	p, err := l.resolve(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return ObjectInfo{}, fmt.Errorf("create storage directory: %w", err)
	}

	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return ObjectInfo{}, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(p)
		return ObjectInfo{}, err
	}

	ct := opt.ContentType
	if ct == "" {
		ct = probeContentType(p)
	}
	return ObjectInfo{Key: key, Size: n, ContentType: ct, LastModified: timeOf(p)}, nil
}

func (l *localStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	info, err := l.Stat(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(filepath.Join(l.dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ObjectInfo{}, ErrNotFound
		}
		return nil, ObjectInfo{}, err
	}
	return f, info, nil
}

func (l *localStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	p, err := l.resolve(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	st, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ObjectInfo{}, ErrNotFound
		}
		return ObjectInfo{}, err
	}
	if !st.Mode().IsRegular() {
		return ObjectInfo{}, ErrNotFound
	}
	return ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		ContentType:  probeContentType(p),
		LastModified: st.ModTime(),
	}, nil
}

// List enumerates regular files directly inside dir. A directory that does not
// exist yet holds no files.
func (l *localStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (l *localStorage) Delete(ctx context.Context, key string) error {
	if _, err := l.Stat(ctx, key); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.dir, key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (l *localStorage) Ping(ctx context.Context) error {
	st, err := os.Stat(l.dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", l.dir)
	}
	return nil
}

// probeContentType guesses a file's type from its extension, then from its
// leading bytes, and falls back to application/octet-stream.
func probeContentType(p string) string {
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		return ct
	}
	m, err := mimetype.DetectFile(p)
	if err != nil || m == nil {
		return defaultContentType
	}
	return m.String()
}

func timeOf(p string) (t time.Time) {
	if st, err := os.Stat(p); err == nil {
		t = st.ModTime()
	}
	return t
}
