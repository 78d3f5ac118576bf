package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gokaycavdar/tickzero-landing/pkg/engine"
	"github.com/gokaycavdar/tickzero-landing/pkg/i18n"
)

// Server serves the localized site and the consent API.
type Server struct {
	engine  *engine.Engine
	catalog *i18n.Catalog
	stores  StoreFactory
	siteDir string
	logger  *slog.Logger
}

// NewServer creates a server for the static site in siteDir.
func NewServer(eng *engine.Engine, catalog *i18n.Catalog, stores StoreFactory, siteDir string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:  eng,
		catalog: catalog,
		stores:  stores,
		siteDir: siteDir,
		logger:  logger,
	}
}

// Router builds the gin handler tree.
func (s *Server) Router(trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, err
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/consent", s.handleConsentStatus)
		api.POST("/consent/accept", s.handleConsentAccept)
		api.POST("/consent/reject", s.handleConsentReject)
		api.GET("/consent/policy", s.handleConsentPolicy)
		api.POST("/events", s.handleEvent)
	}

	r.GET("/lang/:code", s.handleLanguageSwitch)
	r.NoRoute(s.handlePage)
	return r, nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// isPage reports whether p addresses an HTML page rather than an asset.
func isPage(p string) bool {
	return strings.HasSuffix(p, "/") || strings.HasSuffix(p, ".html")
}

// sitePath maps a URL path to a file under the site directory. It never
// escapes the directory.
func (s *Server) sitePath(urlPath string) string {
	clean := path.Clean("/" + urlPath)
	if strings.HasSuffix(urlPath, "/") {
		clean = path.Join(clean, "index.html")
	}
	return filepath.Join(s.siteDir, filepath.FromSlash(clean))
}

func (s *Server) handlePage(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
		return
	}

	urlPath := c.Request.URL.Path
	file := s.sitePath(urlPath)
	info, err := os.Stat(file)
	if err == nil && info.IsDir() && !strings.HasSuffix(urlPath, "/") {
		target := url.URL{Path: path.Clean("/"+urlPath) + "/", RawQuery: c.Request.URL.RawQuery}
		c.Redirect(http.StatusMovedPermanently, target.String())
		return
	}
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if !isPage(urlPath) {
		s.serveFile(c, file, info)
		return
	}

	st, err := s.storeFor(c)
	if err != nil {
		s.logger.Error("visitor store unavailable", "error", err)
		s.serveFile(c, file, info)
		return
	}

	nav := &redirectRecorder{}
	page := s.engine.Load(st, s.input(c), &responsePresenter{}, nav)
	if page.Locale.Redirects() {
		c.Redirect(http.StatusFound, nav.target)
		return
	}

	c.Header("Content-Language", page.Language)
	c.Header("X-Consent-State", page.Consent.String())
	s.serveFile(c, file, info)
}

// serveFile writes file without http.ServeFile's /index.html redirect, which
// would fight with the locale redirect targets.
func (s *Server) serveFile(c *gin.Context, file string, info os.FileInfo) {
	f, err := os.Open(file)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	defer f.Close()

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}

func (s *Server) input(c *gin.Context) engine.Input {
	return engine.Input{
		Path:           c.Request.URL.Path,
		UserAgent:      c.GetHeader("User-Agent"),
		AcceptLanguage: c.GetHeader("Accept-Language"),
		IPAddress:      c.ClientIP(),
	}
}
