package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/whatson-events/whatson-backend/config"
	"github.com/whatson-events/whatson-backend/internal/event"
	"github.com/whatson-events/whatson-backend/internal/reports"
	"github.com/whatson-events/whatson-backend/internal/upload"
	"github.com/whatson-events/whatson-backend/internal/vendor"
	"github.com/whatson-events/whatson-backend/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Vendors *vendor.Handler
	Events  *event.Handler
	Reports *reports.Handler
}

// Setup builds the gin engine with all middleware and routes attached.
func Setup(cfg *config.Config, db *gorm.DB, store upload.Store, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RateLimiter(cfg))
	r.Use(middleware.Errors(store))

	// The frontend is hosted separately, so CORS stays wide open.
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	// Uploaded photos are served straight off the local store.
	r.Static("/uploads", cfg.UploadDir)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := middleware.Auth(cfg)

	events := r.Group("/api/events")
	{
		events.GET("", h.Events.List)
		events.GET("/today", h.Events.Today)
		events.GET("/:eid", h.Events.GetByID)
		events.POST("", auth, h.Events.Create)
		events.PATCH("/:eid", auth, h.Events.Update)
		events.DELETE("/:eid", auth, h.Events.Delete)
	}

	vendors := r.Group("/api/vendors")
	{
		vendors.POST("", h.Vendors.Signup)
		vendors.POST("/login", h.Vendors.Login)
		vendors.PATCH("/:vid", auth, h.Vendors.Update)
		vendors.GET("/:vid/events/export", auth, h.Reports.ExportEvents)
		vendors.GET("/:vid/:timeRef", h.Events.VendorProfile)
	}

	r.NoRoute(middleware.NotFound)

	return r
}
