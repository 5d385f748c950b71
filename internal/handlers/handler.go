package handlers

import (
	"thermostat_hub/internal/broadcast"
	"thermostat_hub/internal/logger"
	"thermostat_hub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Options holds the transport settings that come from configuration.
type Options struct {
	CORSOrigins  []string
	AuthRequired bool   // command routes need a bearer token
	PushToken    string // /pubsub/push is registered only when set
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	hub      *broadcast.Hub
	opts     Options
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, hub *broadcast.Hub, opts Options, log *logger.Logger) *Handler {
	return &Handler{services: services, hub: hub, opts: opts, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware(h.opts.CORSOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", h.health)

	router.GET("/info", h.info)
	router.GET("/weather", h.weather)
	router.GET("/set_lat_long", h.setLatLong)

	h.registerCommandRoutes(router)

	h.registerPushRoute(router)
	router.GET("/ws", h.wsConnect)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	return router
}

func (h *Handler) registerCommandRoutes(r *gin.Engine) {
	commands := r.Group("/")
	if h.opts.AuthRequired {
		commands.Use(h.userIdMiddleware)
	}
	{
		commands.POST("/set_heat", h.setHeat)
		commands.POST("/set_cool", h.setCool)
		commands.POST("/set_range", h.setRange)
		commands.POST("/set_temp_mode", h.setTempMode)
		commands.POST("/set_eco_mode", h.setEcoMode)
		commands.POST("/set_fan_timer", h.setFanTimer)
	}
}

func (h *Handler) registerPushRoute(r *gin.Engine) {
	if h.opts.PushToken == "" {
		return
	}
	r.POST("/pubsub/push", h.pushTokenMiddleware, h.pubsubPush)
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		api.GET("/telemetry", h.getTelemetry)
	}
}
