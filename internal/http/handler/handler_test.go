package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"fileapi/internal/model"
	"fileapi/internal/service"
	serviceMocks "fileapi/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testOrigin = model.Origin{Scheme: "http", Host: "example.com", Port: 80}

type part struct {
	filename    string
	contentType string
	content     string
}

func multipartBody(t *testing.T, field string, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, p.filename))
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		w, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func attachmentName(t *testing.T, resp *http.Response) string {
	t.Helper()
	disposition, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "attachment", disposition)
	return params["filename"]
}

type trackingCloser struct {
	io.Reader
	closed atomic.Bool
}

func (c *trackingCloser) Close() error {
	c.closed.Store(true)
	return nil
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Get("/health", HealthCheck(db, mockSvc))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing()
		mockSvc.On("Ping", mock.Anything).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("database down", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	t.Run("storage down", func(t *testing.T) {
		dbMock.ExpectPing()
		mockSvc.On("Ping", mock.Anything).Return(errors.New("bucket gone")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("without ledger database", func(t *testing.T) {
		svc := new(serviceMocks.MockFileService)
		svc.On("Ping", mock.Anything).Return(nil).Once()
		noDB := fiber.New()
		noDB.Get("/health", HealthCheck(nil, svc))

		resp, _ := noDB.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		svc.AssertExpectations(t)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListFiles(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Get("/api/v1/files", ListFiles(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return([]string{"a.png", "b.pdf"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var names []string
		json.NewDecoder(resp.Body).Decode(&names)
		assert.ElementsMatch(t, []string{"a.png", "b.pdf"}, names)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty store renders an empty array", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return(nil, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))

		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "[]", string(raw))
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return(nil, fmt.Errorf("%w: disk", service.ErrIO)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", res.Error.Code)
		assert.NotContains(t, res.Error.Message, "disk")
	})
}

func TestUploadFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Post("/api/v1/files", UploadFile(mockSvc))

	t.Run("success", func(t *testing.T) {
		body, ct := multipartBody(t, "file", part{"photo.png", "image/png", "0123456789"})

		want := service.UploadFile{Content: []byte("0123456789"), ContentType: "image/png", OriginalFilename: "photo.png"}
		desc := &model.UploadDescriptor{
			Filename:    "0b5e.png",
			FullURL:     testOrigin.FullURL("0b5e.png"),
			DownloadURL: testOrigin.DownloadURL("0b5e.png"),
			FileType:    "image/png",
			Size:        10.0 / 1024.0,
		}
		mockSvc.On("Upload", mock.Anything, want, testOrigin).Return(desc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result map[string]any
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "0b5e.png", result["filename"])
		assert.Equal(t, "http://example.com:80/api/v1/files/download/0b5e.png", result["downloadUrl"])
		assert.InDelta(t, 10.0/1024.0, result["size"], 1e-12)
		assert.NotContains(t, result, "content")
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing content type defaults to octet-stream", func(t *testing.T) {
		body, ct := multipartBody(t, "file", part{filename: "blob.bin", content: "x"})

		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(f service.UploadFile) bool {
			return f.ContentType == "application/octet-stream"
		}), testOrigin).Return(nil, fmt.Errorf("%w: application/octet-stream", service.ErrUnsupportedMediaType)).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
		assert.Equal(t, "UNSUPPORTED_MEDIA_TYPE", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/files", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("service errors map to statuses", func(t *testing.T) {
		cases := []struct {
			err    error
			status int
			code   string
		}{
			{fmt.Errorf("%w: no extension", service.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
			{fmt.Errorf("%w: broken xref", service.ErrExtraction), http.StatusUnprocessableEntity, "EXTRACTION_FAILED"},
			{errors.New("upload failed"), http.StatusInternalServerError, "INTERNAL_ERROR"},
		}
		for _, tc := range cases {
			body, ct := multipartBody(t, "file", part{"doc.pdf", "application/pdf", "%PDF"})
			mockSvc.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err).Once()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/files", body)
			req.Header.Set("Content-Type", ct)
			resp, _ := app.Test(req)

			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decodeError(t, resp).Error.Code)
		}
		mockSvc.AssertExpectations(t)
	})
}

func TestUploadFiles(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Post("/api/v1/files/multiple", UploadFiles(mockSvc))

	t.Run("success keeps request order", func(t *testing.T) {
		body, ct := multipartBody(t, "files",
			part{"a.png", "image/png", "aaa"},
			part{"b.gif", "image/gif", "bb"},
		)

		mockSvc.On("UploadMany", mock.Anything, mock.MatchedBy(func(files []service.UploadFile) bool {
			return len(files) == 2 &&
				files[0].OriginalFilename == "a.png" && string(files[0].Content) == "aaa" &&
				files[1].OriginalFilename == "b.gif" && files[1].ContentType == "image/gif"
		}), testOrigin).Return([]model.UploadDescriptor{{Filename: "1.png"}, {Filename: "2.gif"}}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/files/multiple", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result []model.UploadDescriptor
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result, 2)
		assert.Equal(t, "1.png", result[0].Filename)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no files", func(t *testing.T) {
		body, ct := multipartBody(t, "file", part{"a.png", "image/png", "a"})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/files/multiple", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp).Error.Code)
	})

	t.Run("rejected batch", func(t *testing.T) {
		body, ct := multipartBody(t, "files", part{"a.png", "image/png", "a"}, part{"b.txt", "text/plain", "b"})
		mockSvc.On("UploadMany", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: text/plain", service.ErrUnsupportedMediaType)).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/files/multiple", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownloadFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Get("/api/v1/files/download/:fileName", DownloadFile(mockSvc))

	t.Run("success", func(t *testing.T) {
		rc := &trackingCloser{Reader: strings.NewReader("0123456789")}
		mockSvc.On("Open", mock.Anything, "abc.png").Return(&service.Download{
			Body: rc, Filename: "abc.png", ContentType: "image/png", Size: 10,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files/download/abc.png", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		assert.Equal(t, "abc.png", attachmentName(t, resp))
		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "0123456789", string(raw))
		assert.Eventually(t, rc.closed.Load, time.Second, 10*time.Millisecond)
		mockSvc.AssertExpectations(t)
	})

	t.Run("quote in name is escaped", func(t *testing.T) {
		mockSvc.On("Open", mock.Anything, mock.Anything).Return(&service.Download{
			Body: io.NopCloser(strings.NewReader("x")), Filename: `say"hi.png`, ContentType: "image/png", Size: 1,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files/download/say%22hi.png", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, `attachment; filename="say\"hi.png"`, resp.Header.Get("Content-Disposition"))
		assert.Equal(t, `say"hi.png`, attachmentName(t, resp))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Open", mock.Anything, "missing.png").Return(nil, fmt.Errorf("%w: missing.png", service.ErrNotFound)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files/download/missing.png", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid name", func(t *testing.T) {
		mockSvc.On("Open", mock.Anything, "noext").Return(nil, fmt.Errorf("%w: invalid filename", service.ErrInvalidInput)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files/download/noext", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestDownloadFiles(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Get("/api/v1/files/download/multiple", DownloadFiles(mockSvc))

	t.Run("repeated parameters", func(t *testing.T) {
		rc := &trackingCloser{Reader: strings.NewReader("PK-zip")}
		mockSvc.On("Archive", mock.Anything, []string{"a.png", "b.pdf"}).Return(&service.Download{
			Body: rc, Filename: "files-1.zip", ContentType: "application/zip", Size: 6,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files/download/multiple?filenames=a.png&filenames=b.pdf", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
		assert.Equal(t, "files-1.zip", attachmentName(t, resp))
		assert.Eventually(t, rc.closed.Load, time.Second, 10*time.Millisecond)
		mockSvc.AssertExpectations(t)
	})

	t.Run("comma separated list", func(t *testing.T) {
		mockSvc.On("Archive", mock.Anything, []string{"a.png", "b.pdf", "c.gif"}).Return(&service.Download{
			Body: io.NopCloser(strings.NewReader("z")), Filename: "files-2.zip", ContentType: "application/zip", Size: 1,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files/download/multiple?filenames=a.png,%20b.pdf&filenames=c.gif", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing member", func(t *testing.T) {
		mockSvc.On("Archive", mock.Anything, []string{"gone.png"}).Return(nil, fmt.Errorf("%w: gone.png", service.ErrNotFound)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files/download/multiple?filenames=gone.png", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no filenames", func(t *testing.T) {
		mockSvc.On("Archive", mock.Anything, []string(nil)).Return(nil, fmt.Errorf("%w: at least one filename is required", service.ErrInvalidInput)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files/download/multiple", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteFile(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Delete("/api/v1/files/:fileName", DeleteFile(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "abc.png").Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/files/abc.png", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "file is deleted successfully", body["message"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "abc.png").Return(fmt.Errorf("%w: abc.png", service.ErrNotFound)).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/files/abc.png", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "abc.png").Return(errors.New("delete error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/v1/files/abc.png", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestFileRecord(t *testing.T) {
	mockSvc := new(serviceMocks.MockFileService)
	app := fiber.New()
	app.Get("/api/v1/files/records/:fileName", FileRecord(mockSvc))

	t.Run("success", func(t *testing.T) {
		rec := &model.UploadRecord{StorageName: "abc.png", OriginalFilename: "photo.png", ContentType: "image/png", Size: 10}
		mockSvc.On("Record", mock.Anything, "abc.png").Return(rec, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files/records/abc.png", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.UploadRecord
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "photo.png", result.OriginalFilename)
		mockSvc.AssertExpectations(t)
	})

	t.Run("ledger disabled", func(t *testing.T) {
		mockSvc.On("Record", mock.Anything, "abc.png").Return(nil, service.ErrLedgerDisabled).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files/records/abc.png", nil))

		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
		assert.Equal(t, "NOT_IMPLEMENTED", decodeError(t, resp).Error.Code)
	})
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, "attachment; filename=abc.png", contentDisposition("abc.png"))
	assert.Equal(t, `attachment; filename="a b.png"`, contentDisposition("a b.png"))
	assert.Equal(t, `attachment; filename="say\"hi.png"`, contentDisposition(`say"hi.png`))
	assert.Equal(t, "attachment; filename*=utf-8''r%C3%A9sum%C3%A9.pdf", contentDisposition("résumé.pdf"))
}

func TestOriginOf(t *testing.T) {
	var got model.Origin
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		got = originOf(c)
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "files.local:8080"
	app.Test(req)
	assert.Equal(t, model.Origin{Scheme: "http", Host: "files.local", Port: 8080}, got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	app.Test(req)
	assert.Equal(t, testOrigin, got)
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockSvc := new(serviceMocks.MockFileService)
	RegisterRoutes(app, nil, mockSvc)

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("download multiple is not a file name", func(t *testing.T) {
		mockSvc.On("Archive", mock.Anything, []string{"a.png"}).Return(&service.Download{
			Body: io.NopCloser(strings.NewReader("z")), Filename: "files-3.zip", ContentType: "application/zip", Size: 1,
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files/download/multiple?filenames=a.png", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
		mockSvc.AssertNotCalled(t, "Open", mock.Anything, "multiple")
	})

	t.Run("collection root without trailing slash", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return([]string{}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}
