package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/S204-Inatel-2025-2/AgendaFacil/handlers"
	"github.com/S204-Inatel-2025-2/AgendaFacil/metrics"
	"github.com/S204-Inatel-2025-2/AgendaFacil/middleware"
	"github.com/S204-Inatel-2025-2/AgendaFacil/utils"
)

// Options carries the cross-cutting pieces the router needs besides handlers.
type Options struct {
	AllowedOrigins []string
	Tokens         middleware.TokenVerifier
	Limiter        *middleware.RateLimiter
	Metrics        metrics.Recorder
	Gatherer       prometheus.Gatherer
	Health         *utils.HealthMonitor
	Logger         *zap.Logger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.Use(utils.ErrorHandler(opts.Logger))
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	if opts.Metrics != nil {
		r.Use(middleware.RequestMetrics(opts.Metrics))
	}
	if opts.Limiter != nil {
		r.Use(opts.Limiter.Middleware(opts.Logger))
	}
	r.Use(middleware.SessionGate(opts.Tokens, opts.Logger))

	RegisterAuthRoutes(r, hb)
	RegisterOfferingRoutes(r, hb)
	RegisterPublisherRoutes(r, hb)
	RegisterOpsRoutes(r, opts)
}

// RegisterAuthRoutes registers identity and Google sign-in endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/register", hb.RegisterHandler)
	r.POST("/login", hb.LoginHandler)
	r.GET("/users", hb.ListUsersHandler)

	r.POST("/auth/google", hb.GoogleIDTokenHandler)
	r.GET("/oauth2/authorization/google", hb.GoogleAuthorizeHandler)
	r.GET("/login/oauth2/code/google", hb.GoogleCallbackHandler)
	r.GET("/oauth2/status", hb.AuthStatusHandler)

	protected := r.Group("")
	protected.Use(middleware.RequirePrincipal())
	protected.GET("/me", hb.MeHandler)
}

// RegisterOfferingRoutes registers /servicos.
func RegisterOfferingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/servicos")
	api.Use(middleware.RequirePrincipal())
	{
		api.POST("/cadastrar", hb.CreateOfferingHandler)
		api.GET("", hb.ListOpenOfferingsHandler)
		api.GET("/:id", hb.GetOfferingHandler)
		api.GET("/empresa/:id", hb.OfferingsByPublisherHandler)
		api.GET("/categoria/:category", hb.OfferingsByCategoryHandler)
		api.GET("/nome/:name", hb.OfferingByNameHandler)
		api.DELETE("/:id", hb.DeleteOfferingHandler)
		api.POST("/:id/reservar", hb.ReserveOfferingHandler)
	}
}

// RegisterPublisherRoutes registers /empresas.
func RegisterPublisherRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/empresas")
	api.Use(middleware.RequirePrincipal())
	{
		api.GET("/cnpj/:cnpj", hb.LookupCNPJHandler)
		api.POST("/cadastrar", hb.RegisterPublisherHandler)
		api.GET("", hb.ListPublishersHandler)
		api.GET("/:id", hb.GetPublisherHandler)
	}
}

// RegisterOpsRoutes registers health, metrics and the generic error page.
func RegisterOpsRoutes(r *gin.Engine, opts Options) {
	r.GET("/health", func(c *gin.Context) {
		if opts.Health == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		status := opts.Health.Status()
		code, label := http.StatusOK, "ok"
		if !status.Healthy() {
			code, label = http.StatusServiceUnavailable, "degraded"
		}
		c.JSON(code, gin.H{"status": label, "checks": status.Checks, "checkedAt": status.CheckedAt})
	})
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(opts.Gatherer)))
	}
	r.GET("/error", func(c *gin.Context) {
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", "An unexpected error occurred.")
	})
}
