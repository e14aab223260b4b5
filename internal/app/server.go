// File: internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"campus_desk_backend/internal/analytics"
	"campus_desk_backend/internal/auth"
	"campus_desk_backend/internal/category"
	"campus_desk_backend/internal/complaint"
	"campus_desk_backend/internal/config"
	"campus_desk_backend/internal/jobs"
	"campus_desk_backend/internal/lostfound"
	"campus_desk_backend/internal/middleware"
	"campus_desk_backend/internal/notification"
	"campus_desk_backend/internal/platform/elasticsearch"
	"campus_desk_backend/internal/session"
	"campus_desk_backend/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by the server.
type Handlers struct {
	Auth         *auth.Handler
	Category     *category.Handler
	Complaint    *complaint.Handler
	LostFound    *lostfound.Handler
	Analytics    *analytics.Handler
	Notification *notification.Handler
	Profile      *user.Handler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config

	// Exposed so the entrypoint can prepare the search index before serving.
	AppLogger *zap.Logger
	ESClient  *elasticsearch.ESClientWrapper

	searchReindexJob *jobs.SearchReindexJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	verifier session.Verifier,
	resolver session.Resolver,
	searchReindexJob *jobs.SearchReindexJob,
	esClient *elasticsearch.ESClientWrapper,
) (*Server, error) {
	router := NewRouter(cfg, logger, handlers, verifier, resolver)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:       httpServer,
		router:           router,
		cfg:              cfg,
		AppLogger:        logger,
		ESClient:         esClient,
		searchReindexJob: searchReindexJob,
	}, nil
}

// NewRouter builds the gin engine with the middleware chain and every route group.
//
//	signedIn  /api/v1         any verified caller
//	students  /api/v1         students only
//	admins    /api/v1/admin   any admin
//	desk      /api/v1/admin   Lost and Found admins (and the master admin)
//	master    /api/v1/admin   master admin only
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	verifier session.Verifier,
	resolver session.Resolver,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.MaxMultipartMemory = cfg.MaxUploadBytes

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Campus Desk API is healthy!"})
	})

	if cfg.StorageDriver == "local" {
		router.Static("/uploads", cfg.StorageLocalPath)
	}

	authMW := middleware.AuthMiddleware(verifier, resolver, logger.Named("AuthMiddleware"))

	v1 := router.Group("/api/v1")
	signedIn := v1.Group("", authMW)
	students := v1.Group("", authMW, middleware.RequireStudent())
	admins := v1.Group("/admin", authMW, middleware.RequireAdmin())
	desk := v1.Group("/admin", authMW, middleware.RequireAdmin(session.RoleLostAndFound))
	master := v1.Group("/admin", authMW, middleware.RequireAdmin(session.RoleMasterAdmin))

	handlers.Auth.RegisterRoutes(signedIn)
	handlers.Category.RegisterRoutes(signedIn, master)
	handlers.Complaint.RegisterRoutes(students, signedIn, admins)
	handlers.LostFound.RegisterRoutes(students, desk)
	handlers.Analytics.RegisterRoutes(admins)
	if handlers.Profile != nil {
		handlers.Profile.RegisterRoutes(admins)
	}

	if handlers.Notification != nil {
		handlers.Notification.RegisterRoutes(signedIn.Group("/notifications"))
	} else {
		logger.Warn("Notification handler is nil, routes will not be registered.")
	}

	return router
}

// Router exposes the engine for in-process HTTP tests.
func (s *Server) Router() *gin.Engine { return s.router }

func (s *Server) Start() error {
	if s.searchReindexJob != nil {
		if err := s.searchReindexJob.SetupAndStart(); err != nil {
			s.AppLogger.Error("Failed to setup and start search reindex job", zap.Error(err))
		}
	} else {
		s.AppLogger.Info("Search reindex job is not configured, skipping start.")
	}

	s.AppLogger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.AppLogger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.AppLogger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.AppLogger.Info("Attempting graceful server shutdown...")
	if s.searchReindexJob != nil {
		s.searchReindexJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
