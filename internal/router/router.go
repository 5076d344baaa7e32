package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhinakarr/realtors-app-sub001/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORS           middleware.CORSConfig
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	notificationH Handler
	eventH        Handler
	healthH       Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	notificationH Handler,
	eventH Handler,
	healthH Handler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.CORS(config.CORS),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateLimitBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return &Router{
		engine:        engine,
		auth:          auth,
		notificationH: notificationH,
		eventH:        eventH,
		healthH:       healthH,
	}
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	r.healthH.RegisterRoutes(api)

	authed := api.Group("")
	authed.Use(r.auth.Authenticate())
	r.notificationH.RegisterRoutes(authed)
	r.eventH.RegisterRoutes(authed)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
