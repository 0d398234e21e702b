package router

import (
	"log"
	"net/http"
	"time"

	"employee-directory/internal/handlers"
	"employee-directory/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New returns an engine with recovery and request logging installed.
func New(logger *log.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(logger), gin.Recovery())
	return r
}

// SetupDirectory mounts the directory API, /metrics and /health.
func SetupDirectory(r *gin.Engine, h *handlers.DirectoryHandler, gatherer prometheus.Gatherer) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/directory")
	api.GET("", h.Snapshot)
	api.GET("/events", h.Events)
	api.POST("/refresh", h.Refresh)

	api.PUT("/filters", h.SetFilters)
	api.DELETE("/filters", h.ClearFilters)

	api.POST("/forms/create", h.OpenCreateForm)
	api.POST("/forms/edit/:id", h.OpenEditForm)
	api.DELETE("/forms", h.CloseForm)

	api.POST("/employees", h.CreateEmployee)
	api.PUT("/employees/:id", h.UpdateEmployee)
	api.POST("/employees/:id/delete", h.RequestDelete)
	api.POST("/delete/confirm", h.ConfirmDelete)
	api.POST("/delete/cancel", h.CancelDelete)
}

// SetupRecordStore mounts the employee resource. An empty origins list or
// "*" allows any origin.
func SetupRecordStore(r *gin.Engine, h *handlers.RecordHandler, origins []string, health func() error) {
	r.Use(cors.New(corsConfig(origins)))

	r.GET("/health", func(c *gin.Context) {
		if health != nil {
			if err := health(); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"status": "db_error", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/employee", h.ListRecords)
	r.POST("/employee", h.CreateRecord)
	r.GET("/employee/:id", h.GetRecord)
	r.PUT("/employee/:id", h.UpdateRecord)
	r.DELETE("/employee/:id", h.DeleteRecord)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		MaxAge:       12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
