package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"fileapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// db may be nil when the upload ledger is disabled.
func RegisterRoutes(app *fiber.App, db *sql.DB, fileSvc service.FileService) {
	app.Get("/health", HealthCheck(db, fileSvc))
	app.Get("/healthz", LivenessProbe())

	files := app.Group("/api/v1/files")
	files.Get("/", ListFiles(fileSvc))
	files.Post("/", UploadFile(fileSvc))
	files.Post("/multiple", UploadFiles(fileSvc))
	// Must precede /download/:fileName, which would otherwise capture "multiple".
	files.Get("/download/multiple", DownloadFiles(fileSvc))
	files.Get("/download/:fileName", DownloadFile(fileSvc))
	files.Get("/records/:fileName", FileRecord(fileSvc))
	files.Delete("/:fileName", DeleteFile(fileSvc))
}
