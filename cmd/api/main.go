package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fileapi/docs"
	"fileapi/internal/config"
	"fileapi/internal/database"
	"fileapi/internal/database/migration"
	"fileapi/internal/extract"
	handlers "fileapi/internal/http/handler"
	"fileapi/internal/http/middleware"
	"fileapi/internal/otel"
	"fileapi/internal/repository"
	"fileapi/internal/repository/postgres"
	"fileapi/internal/service"
	"fileapi/internal/storage"
)

// @title File API
// @version 1.0
// @description Upload, list, download and delete files. PDF uploads get their text extracted.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// The upload ledger is optional; without DB_HOST files live in storage only.
	var (
		db   *sql.DB
		repo repository.UploadRepository
	)
	if cfg.Database.Enabled() {
		db, err = database.Open(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		repo = postgres.NewUploadPostgres(db)
	}

	store, err := newStorage(cfg.Storage, cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	fileSvc := service.NewFileService(store, repo, extract.NewPDF(), cfg.Storage.TempDir)

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.Storage.BodyLimit(),
		ErrorHandler: handlers.ErrorHandler(),
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.LoggerWithWriter(os.Stdout, loc))
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == middleware.MetricsPath
	})))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, db, fileSvc)
	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := ":" + cfg.Port
	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}

// newStorage builds the configured storage backend.
func newStorage(sc config.StorageConfig, mc config.MinIOConfig) (storage.Storage, error) {
	switch sc.Driver {
	case "", "local":
		return storage.NewLocal(sc.Dir)
	case "minio":
		return storage.NewMinIO(mc)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", sc.Driver)
	}
}
