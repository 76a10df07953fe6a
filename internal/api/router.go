package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lifeofpease/matchmaking-api/internal/api/handler"
	"github.com/lifeofpease/matchmaking-api/internal/api/middleware"
	"github.com/lifeofpease/matchmaking-api/internal/core/domain"
	"github.com/lifeofpease/matchmaking-api/internal/core/ports"
	"github.com/lifeofpease/matchmaking-api/internal/core/service"
	mongodb "github.com/lifeofpease/matchmaking-api/internal/infrastructure/db/mongo"
	redisdb "github.com/lifeofpease/matchmaking-api/internal/infrastructure/db/redis"
)

// RouterConfig carries the non-infrastructure knobs NewRouter needs.
type RouterConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, notify ports.NotificationEnqueuer, cfg RouterConfig, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("matchmaking"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	connRepo := mongodb.NewConnectionRepository(db)
	tagRepo := mongodb.NewTagRepository(db)
	articleRepo := mongodb.NewArticleRepository(db)
	reportRepo := mongodb.NewReportRepository(db)
	guard := redisdb.NewPairGuard(rdb)

	authService := service.NewAuthService(userRepo, tagRepo, notify, cfg.JWTSecret, cfg.TokenTTL, log)
	connService := service.NewConnectionService(connRepo, userRepo, guard, notify, log)
	discoveryService := service.NewDiscoveryService(userRepo, log)
	articleService := service.NewArticleService(articleRepo, userRepo, log)
	adminService := service.NewAdminService(userRepo, connRepo, tagRepo, reportRepo, notify, log)

	authHandler := handler.NewAuthHandler(authService)
	connHandler := handler.NewConnectionHandler(connService)
	therapistHandler := handler.NewTherapistHandler(discoveryService, tagRepo)
	articleHandler := handler.NewArticleHandler(articleService)
	adminHandler := handler.NewAdminHandler(adminService, connService)

	authed := middleware.Auth(cfg.JWTSecret)
	clientOnly := middleware.RBAC(string(domain.RoleClient))
	therapistOnly := middleware.RBAC(string(domain.RoleTherapist))
	partyOnly := middleware.RBAC(string(domain.RoleClient), string(domain.RoleTherapist))
	adminOnly := middleware.RBAC(string(domain.RoleSuperAdmin))
	anyRole := middleware.RBAC(string(domain.RoleClient), string(domain.RoleTherapist), string(domain.RoleSuperAdmin))

	g := e.Group("/api")

	// --- Auth routes ---
	auth := g.Group("/auth")
	auth.POST("/register/client", authHandler.RegisterClient)
	auth.POST("/register/therapist", authHandler.RegisterTherapist)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authed, anyRole)
	auth.PUT("/profile", authHandler.UpdateProfile, authed, anyRole)
	auth.PUT("/password", authHandler.ChangePassword, authed, anyRole)

	// --- Connection workflow ---
	conns := g.Group("/connections", authed)
	conns.POST("/respond", connHandler.Respond, therapistOnly)
	conns.GET("/by-therapist/:limit/:offset", connHandler.ListByTherapist, therapistOnly)
	conns.GET("/by-client/:limit/:offset", connHandler.ListByClient, clientOnly)
	conns.GET("/check/:userId", connHandler.Check, partyOnly)
	conns.GET("/sent", connHandler.ListSent, clientOnly)
	conns.GET("/pair/:clientId/:therapistId", connHandler.PairHistory, anyRole)
	conns.POST("/:requestId/remove", connHandler.Remove, partyOnly)
	conns.POST("/:requestId/unfriend", connHandler.Unfriend, partyOnly)
	conns.POST("/:therapistId", connHandler.Request, clientOnly)

	// --- Discovery ---
	g.GET("/therapists/search", therapistHandler.Search, authed, clientOnly)
	g.GET("/tags", therapistHandler.ListTags, authed, anyRole)

	// --- Articles ---
	g.POST("/articles", articleHandler.Create, authed, therapistOnly)
	g.GET("/articles", articleHandler.List)
	g.GET("/articles/:id", articleHandler.Get)
	g.DELETE("/articles/:id", articleHandler.Delete, authed, anyRole)

	// --- Reports ---
	g.POST("/users/report", adminHandler.Report, authed, partyOnly)

	// --- Admin moderation ---
	admin := g.Group("/admin", authed, adminOnly)
	admin.GET("/connections/check/:clientId/:therapistId", adminHandler.CheckPair)
	admin.GET("/connections/by-therapist/:therapistId", adminHandler.ConnectionsByTherapist)
	admin.GET("/clients/pending/:limit/:offset", adminHandler.PendingClients)
	admin.GET("/clients/approved/:limit/:offset", adminHandler.ApprovedClients)
	admin.GET("/therapists/pending/:limit/:offset", adminHandler.PendingTherapists)
	admin.GET("/therapists/approved/:limit/:offset", adminHandler.ApprovedTherapists)
	admin.POST("/therapists/:id/approve", adminHandler.ApproveTherapist)
	admin.POST("/therapists/:id/reject", adminHandler.RejectTherapist)
	admin.POST("/clients/:id/approve", adminHandler.ApproveClient)
	admin.POST("/users/:id/block", adminHandler.BlockUser)
	admin.POST("/users/:id/unblock", adminHandler.UnblockUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)
	admin.POST("/tags", adminHandler.CreateTag)
	admin.PUT("/tags/:id", adminHandler.UpdateTag)
	admin.DELETE("/tags/:id", adminHandler.DeleteTag)
	admin.GET("/reports/:limit/:offset", adminHandler.ListReports)
	admin.POST("/reports/:id/resolve", adminHandler.ResolveReport)
	admin.GET("/stats", adminHandler.Stats)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
