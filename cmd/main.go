package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/whatson-events/whatson-backend/config"
	"github.com/whatson-events/whatson-backend/database"
	"github.com/whatson-events/whatson-backend/internal/auditlog"
	"github.com/whatson-events/whatson-backend/internal/event"
	"github.com/whatson-events/whatson-backend/internal/geocoding"
	"github.com/whatson-events/whatson-backend/internal/reports"
	"github.com/whatson-events/whatson-backend/internal/upload"
	"github.com/whatson-events/whatson-backend/internal/vendor"
	"github.com/whatson-events/whatson-backend/routes"
)

// @title           WhatsOn API
// @version         1.0
// @description     Backend for the WhatsOn event discovery platform.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	})))

	cfg := config.Load()

	db := database.Connect(cfg)
	if err := db.AutoMigrate(&vendor.Vendor{}, &event.Event{}, &auditlog.AuditLog{}); err != nil {
		slog.Error("❌ Database migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("✅ Database migrated")

	store, err := upload.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		slog.Error("❌ Upload store init failed", "error", err)
		os.Exit(1)
	}

	geocoder := geocoding.NewClient(cfg.GeocoderBaseURL, cfg.GeocoderEmail)

	auditSvc := auditlog.NewService(auditlog.NewRepository(db))

	vendorRepo := vendor.NewRepository(db)
	vendorSvc := vendor.NewService(vendorRepo, geocoder, store, auditSvc, cfg)
	vendorHandler := vendor.NewHandler(vendorSvc, store)

	eventRepo := event.NewRepository(db)
	eventSvc := event.NewService(eventRepo, vendorRepo, geocoder, store, auditSvc, cfg.Location())
	eventHandler := event.NewHandler(eventSvc, vendorSvc, store)

	reportsHandler := reports.NewHandler(vendorSvc, eventSvc, reports.NewExporter())

	r := routes.Setup(cfg, db, store, routes.Handlers{
		Vendors: vendorHandler,
		Events:  eventHandler,
		Reports: reportsHandler,
	})

	slog.Info("🔄 Starting server", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("❌ Server exited", "error", err)
		os.Exit(1)
	}
}
