package api

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jon4hz/bixblion/internal/api/auth"
	"github.com/jon4hz/bixblion/internal/api/handler"
	"github.com/jon4hz/bixblion/internal/config"
	"github.com/jon4hz/bixblion/internal/engine"
	"github.com/jon4hz/bixblion/internal/gravatar"
)

const sessionName = "bixblion_session"

type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	engine    *engine.Engine
}

// New creates the API server. Routes are registered immediately.
func New(cfg *config.Config, e *engine.Engine, debug bool) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if e == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if err := gravatar.Validate(cfg.Gravatar); err != nil {
		return nil, err
	}

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:       cfg,
		ginEngine: gin.New(),
		engine:    e,
	}
	s.ginEngine.Use(gin.Recovery(), requestLogger())
	s.ginEngine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/events"})))

	if err := s.setupSession(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupSession() error {
	key := []byte(s.cfg.SessionKey)
	if len(key) == 0 {
		log.Warn("No session key configured, generating a random one")
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("failed to generate session key: %w", err)
		}
	}

	store := cookie.NewStore(key)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   s.cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions(sessionName, store))
	return nil
}

func (s *Server) setupRoutes() {
	h := handler.New(s.engine, s.cfg)

	s.ginEngine.Use(auth.Provide(s.engine.Directory()))

	s.ginEngine.GET("/login", h.Login)

	public := s.ginEngine.Group("/api/auth")
	public.POST("/login", h.LoginSubmit)
	public.POST("/register", h.Register)
	public.POST("/logout", h.Logout)

	protected := s.ginEngine.Group("/")
	protected.Use(auth.RequireSession())
	protected.GET("/", h.Home)

	api := protected.Group("/api")
	api.GET("/auth/me", h.Me)
	api.PUT("/auth/profile", h.UpdateProfile)
	api.GET("/appearance", h.GetAppearance)
	api.PUT("/appearance/settings", h.UpdateAppearanceSettings)
	api.PUT("/appearance/theme", h.SetTheme)
	api.GET("/events", h.Events)
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
		// cancels long running requests like the event stream on shutdown
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting API server", "listen", s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger() gin.HandlerFunc {
	logger := log.Default().WithPrefix("api")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
