package handlers

import (
	"time"

	"noise_monitor/internal/logger"
	"noise_monitor/internal/metrics"
	"noise_monitor/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Config holds the HTTP-layer settings.
type Config struct {
	// APIKey is the shared device secret; empty leaves ingestion open.
	APIKey string
	// Metrics records rejections; nil disables recording.
	Metrics *metrics.Metrics
	// Gatherer backs GET /metrics; nil leaves the route unregistered.
	Gatherer prometheus.Gatherer
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	cfg      Config
	now      func() time.Time
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, cfg Config) *Handler {
	return &Handler{services: services, log: log, cfg: cfg, now: time.Now}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	if h.cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	h.registerAPIRoutes(router)

	// Live device snapshots over WebSocket on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		h.registerReadingRoutes(api)
		h.registerIngestRoutes(api)
	}
}

func (h *Handler) registerReadingRoutes(api *gin.RouterGroup) {
	readings := api.Group("/device-readings")
	{
		// the gate runs first so a disabled ingest rejects every write uniformly
		readings.POST("", h.ingestGateMiddleware, h.apiKeyMiddleware, h.createReading)
		readings.GET("", h.listReadings)
		readings.GET("/:deviceId/latest", h.latestReading)
	}
}

func (h *Handler) registerIngestRoutes(api *gin.RouterGroup) {
	ingest := api.Group("/device-ingest")
	{
		ingest.GET("", h.getIngest)
		ingest.POST("", h.setIngest)
	}
}
