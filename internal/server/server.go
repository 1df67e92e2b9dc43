// Package server exposes the site's HTTP API: the translate endpoint the page
// pipeline consumes, uploads, the catalog and lead forms, and server-side
// rendering of site pages in the visitor's language.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/medtravel"
	"github.com/ZaguanLabs/medtravel/cache"
	"github.com/ZaguanLabs/medtravel/internal/catalog"
	"github.com/ZaguanLabs/medtravel/internal/config"
	"github.com/ZaguanLabs/medtravel/internal/upload"
	"github.com/ZaguanLabs/medtravel/pipeline"
)

// SessionName is the cookie holding the visitor session.
const SessionName = "medtravel_session"

const (
	sessionMaxAge  = 365 * 24 * time.Hour
	renderTimeout  = 10 * time.Second
	shutdownPeriod = 15 * time.Second
)

// Deps are the collaborators a Server is built from.
type Deps struct {
	Config   *config.Config
	Store    *catalog.Store
	Cache    cache.Cache
	Provider medtravel.Provider
	Uploader *upload.Uploader
	Logger   *zap.Logger
	// Preferences, when set, returns a shared store for a visitor ID. The
	// language choice is then kept there as well as in the cookie session.
	Preferences func(visitor string) pipeline.PreferenceStore
}

// Server owns the gin engine and its handlers.
type Server struct {
	cfg      *config.Config
	store    *catalog.Store
	cache    cache.Cache
	provider medtravel.Provider
	uploader *upload.Uploader
	batch    *pipeline.BatchClient
	prefs    func(visitor string) pipeline.PreferenceStore
	logger   *zap.Logger
	router   *gin.Engine
}

// New builds the server and its routes. Provider is used as given; callers
// add retry and rate limiting.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := d.Config
	if cfg == nil {
		cfg = config.Default()
	}
	c := d.Cache
	if c == nil {
		c = cache.NewMemory(cfg.Translation.CacheTTL)
	}

	s := &Server{
		cfg:      cfg,
		store:    d.Store,
		cache:    c,
		provider: d.Provider,
		uploader: d.Uploader,
		prefs:    d.Preferences,
		logger:   logger,
	}
	if s.uploader == nil {
		s.uploader = upload.NewUploader(upload.NewDiskStore(cfg.Storage.UploadDir))
	}
	if s.provider != nil {
		s.batch = pipeline.NewBatchClient(s.provider, s.cache,
			pipeline.WithBatchSize(cfg.Translation.BatchSize),
			pipeline.WithBatchPause(cfg.Translation.BatchPause),
			pipeline.WithBatchTimeout(cfg.Translation.RequestTimeout),
			pipeline.WithStyle(medtravel.TranslationStyle(cfg.Translation.Style)),
			pipeline.WithBatchLogger(logger),
		)
	}
	s.router = s.newRouter()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx ends, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownPeriod)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) newRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if s.cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(accessLog(s.logger))
	router.RedirectTrailingSlash = false

	router.GET("/health", s.health)

	if len(s.cfg.Server.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = s.cfg.Server.CORSOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With"}
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
		router.Use(cors.New(corsConfig))
	}

	store := cookie.NewStore([]byte(s.cfg.Server.SessionSecret))
	sessionOpts := sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
	}
	if s.cfg.Server.Debug {
		sessionOpts.SameSite = http.SameSiteDefaultMode
	} else {
		sessionOpts.SameSite = http.SameSiteLaxMode
	}
	store.Options(sessionOpts)
	router.Use(sessions.Sessions(SessionName, store))

	secureConfig := secure.DefaultConfig()
	secureConfig.SSLRedirect = false
	secureConfig.IsDevelopment = s.cfg.Server.Debug
	secureConfig.ContentSecurityPolicy = "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'"
	router.Use(secure.New(secureConfig))

	router.Static("/uploads", s.cfg.Storage.UploadDir)
	router.GET("/pages/*path", s.renderPage)

	api := router.Group("/api")
	api.GET("/languages", s.listLanguages)
	api.GET("/language", s.getLanguage)
	api.POST("/language", s.setLanguage)
	if rpm := s.cfg.Translation.VisitorRPM; rpm > 0 {
		visitors := medtravel.NewVisitorLimiter(medtravel.RateLimitConfig{RequestsPerMinute: rpm}, 0)
		api.POST("/translate", rateLimit(visitors), s.translate)
	} else {
		api.POST("/translate", s.translate)
	}

	admin := api.Group("")
	admin.Use(requireAdmin(s.cfg.Server.AdminToken))
	admin.POST("/upload", s.upload)

	if s.store != nil {
		api.GET("/settings", s.getSettings)
		api.POST("/inquiries", s.createInquiry)
		api.POST("/newsletter", s.subscribe)

		admin.PUT("/settings", s.updateSettings)
		admin.GET("/inquiries", s.listInquiries)
		admin.PATCH("/inquiries/:id", s.updateInquiry)
		admin.GET("/newsletter", s.listSubscribers)
		admin.DELETE("/newsletter/:email", s.unsubscribe)

		registerResource[catalog.Doctor](api, admin, "doctors", s.store.Doctors, s)
		registerResource[catalog.Treatment](api, admin, "treatments", s.store.Treatments, s)
		registerResource[catalog.Hospital](api, admin, "hospitals", s.store.Hospitals, s)
		registerResource[catalog.FAQ](api, admin, "faqs", s.store.FAQs, s)
	}

	return router
}

func (s *Server) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok", "service": medtravel.Name, "version": medtravel.Version}
	if s.store != nil {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = err.Error()
		}
	}
	c.JSON(status, body)
}
