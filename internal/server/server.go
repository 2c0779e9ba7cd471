package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/propertydesk/property-broker/internal/auth"
	"github.com/propertydesk/property-broker/internal/common"
	"github.com/propertydesk/property-broker/internal/export"
	"github.com/propertydesk/property-broker/internal/ingest"
	"github.com/propertydesk/property-broker/internal/repository"
	"github.com/propertydesk/property-broker/internal/search"
	"github.com/propertydesk/property-broker/internal/subscription"
)

// Server wires the HTTP surface over the domain services.
type Server struct {
	cfg       *common.Config
	authSvc   *auth.Service
	tokens    *auth.TokenManager
	users     repository.UserRepository
	props     repository.PropertyRepository
	subsRepo  repository.SubscriptionRepository
	logs      repository.SearchLogRepository
	subSvc    *subscription.Service
	searchSvc *search.Service
	ingestSvc *ingest.Service
	exportSvc *export.Service
	logger    *slog.Logger
}

// Deps bundles the server's collaborators.
type Deps struct {
	Config       *common.Config
	AuthService  *auth.Service
	Tokens       *auth.TokenManager
	Users        repository.UserRepository
	Properties   repository.PropertyRepository
	Subs         repository.SubscriptionRepository
	SearchLogs   repository.SearchLogRepository
	Subscription *subscription.Service
	Search       *search.Service
	Ingest       *ingest.Service
	Export       *export.Service
	Logger       *slog.Logger
}

// New creates the server.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:       d.Config,
		authSvc:   d.AuthService,
		tokens:    d.Tokens,
		users:     d.Users,
		props:     d.Properties,
		subsRepo:  d.Subs,
		logs:      d.SearchLogs,
		subSvc:    d.Subscription,
		searchSvc: d.Search,
		ingestSvc: d.Ingest,
		exportSvc: d.Export,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if origins := splitOrigins(s.cfg.Server.CORSOrigins); len(origins) == 1 && origins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", s.handleRegister)
		authGroup.POST("/login", s.handleLogin)
		authGroup.POST("/refresh-token", s.handleRefreshToken)
		authGroup.GET("/profile", s.Authenticate(), s.handleProfile)
	}

	props := api.Group("/properties", s.Authenticate(), s.RequireActiveSubscription())
	{
		props.GET("/search", s.handleSearch)
		props.GET("/stats", s.handlePropertyStats)
		props.GET("/:id", s.handleGetProperty)
	}

	subs := api.Group("/subscriptions", s.Authenticate())
	{
		subs.GET("/plans", s.handlePlans)
		subs.POST("/create-order", s.handleCreateOrder)
		subs.POST("/verify-payment", s.handleVerifyPayment)
		subs.GET("/status", s.handleSubscriptionStatus)
	}

	admin := api.Group("/admin", s.Authenticate(), s.RequireAdmin())
	{
		admin.POST("/upload-pdf", s.handleUploadPDF)
		admin.DELETE("/properties", s.handleDeleteAllProperties)
		admin.GET("/properties/search", s.handleAdminSearch)
		admin.GET("/users", s.handleListUsers)
		admin.GET("/subscriptions", s.handleListSubscriptions)
		admin.GET("/dashboard/stats", s.handleDashboardStats)
		admin.GET("/search-statistics", s.handleSearchStatistics)
		admin.GET("/reports/users", s.handleUsersReport)
		admin.GET("/reports/subscriptions", s.handleSubscriptionsReport)
		admin.GET("/reports/properties", s.handlePropertiesReport)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

func splitOrigins(raw string) []string {
	if raw == "" || raw == "*" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
