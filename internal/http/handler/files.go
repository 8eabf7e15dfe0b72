package handler

import (
	"io"
	"mime"
	"mime/multipart"
	"net"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"fileapi/internal/model"
	"fileapi/internal/service"
)

const defaultContentType = "application/octet-stream"

// originOf derives the scheme/host/port the client used to reach the API.
func originOf(c *fiber.Ctx) model.Origin {
	o := model.Origin{Scheme: c.Protocol(), Host: c.Hostname()}
	if host, port, err := net.SplitHostPort(o.Host); err == nil {
		o.Host = host
		o.Port, _ = strconv.Atoi(port)
	}
	if o.Port == 0 {
		o.Port = 80
		if o.Scheme == "https" {
			o.Port = 443
		}
	}
	return o
}

// readPart loads a multipart file into memory. The part's declared content type is what
// the allow-list is checked against.
func readPart(fh *multipart.FileHeader) (service.UploadFile, error) {
	f, err := fh.Open()
	if err != nil {
		return service.UploadFile{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return service.UploadFile{}, err
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = defaultContentType
	}
	return service.UploadFile{Content: content, ContentType: ct, OriginalFilename: fh.Filename}, nil
}

// ListFiles godoc
// @Summary List stored files
// @Description Returns the storage names of all stored files, in no particular order.
// @Tags files
// @Produce json
// @Success 200 {array} string
// @Failure 500 {object} errorPayload
// @Router /api/v1/files [get]
func ListFiles(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		names, err := fileSvc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		if names == nil {
			names = []string{}
		}
		return c.JSON(names)
	}
}

// UploadFile godoc
// @Summary Upload a file
// @Description Stores one file under a generated name. PDF uploads also get their text extracted.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} model.UploadDescriptor
// @Failure 400 {object} errorPayload
// @Failure 415 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/v1/files [post]
func UploadFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := readPart(fh)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}

		desc, err := fileSvc.Upload(c.UserContext(), f, originOf(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(desc)
	}
}

// UploadFiles godoc
// @Summary Upload several files
// @Description Stores every file of the "files" field. The first failure aborts the request and removes the files already stored.
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload"
// @Success 201 {array} model.UploadDescriptor
// @Failure 400 {object} errorPayload
// @Failure 415 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/v1/files/multiple [post]
func UploadFiles(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil || len(form.File["files"]) == 0 {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "at least one file is required")
		}

		files := make([]service.UploadFile, 0, len(form.File["files"]))
		for _, fh := range form.File["files"] {
			f, err := readPart(fh)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
			}
			files = append(files, f)
		}

		descs, err := fileSvc.UploadMany(c.UserContext(), files, originOf(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(descs)
	}
}

// DownloadFile godoc
// @Summary Download a file
// @Tags files
// @Produce octet-stream
// @Param fileName path string true "Storage name"
// @Success 200 {file} binary
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/files/download/{fileName} [get]
func DownloadFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dl, err := fileSvc.Open(c.UserContext(), c.Params("fileName"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return sendDownload(c, dl)
	}
}

// DownloadFiles godoc
// @Summary Download several files as a zip archive
// @Description Accepts repeated filenames parameters or a comma-separated list.
// @Tags files
// @Produce application/zip
// @Param filenames query []string true "Storage names" collectionFormat(multi)
// @Success 200 {file} binary
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/files/download/multiple [get]
func DownloadFiles(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		dl, err := fileSvc.Archive(c.UserContext(), queryFilenames(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return sendDownload(c, dl)
	}
}

// queryFilenames collects every filenames query value, splitting comma-separated lists.
func queryFilenames(c *fiber.Ctx) []string {
	var names []string
	for _, raw := range c.Context().QueryArgs().PeekMulti("filenames") {
		for _, n := range strings.Split(string(raw), ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	return names
}

// sendDownload streams dl as an attachment. The body is closed by fasthttp once written.
func sendDownload(c *fiber.Ctx, dl *service.Download) error {
	c.Set(fiber.HeaderContentDisposition, contentDisposition(dl.Filename))
	ct := dl.ContentType
	if ct == "" {
		ct = defaultContentType
	}
	c.Set(fiber.HeaderContentType, ct)
	return c.SendStream(dl.Body, int(dl.Size))
}

// contentDisposition builds an attachment header, quoting and escaping the file name as needed.
func contentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}

// DeleteFile godoc
// @Summary Delete a file
// @Tags files
// @Produce json
// @Param fileName path string true "Storage name"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/v1/files/{fileName} [delete]
func DeleteFile(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := fileSvc.Delete(c.UserContext(), c.Params("fileName")); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"message": "file is deleted successfully"})
	}
}

// FileRecord godoc
// @Summary Get the upload record of a file
// @Description Only available when the upload ledger database is configured.
// @Tags files
// @Produce json
// @Param fileName path string true "Storage name"
// @Success 200 {object} model.UploadRecord
// @Failure 404 {object} errorPayload
// @Failure 501 {object} errorPayload
// @Router /api/v1/files/records/{fileName} [get]
func FileRecord(fileSvc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := fileSvc.Record(c.UserContext(), c.Params("fileName"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}
