package api

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"time"

	"gradesheet/domain/core"
	"gradesheet/internal/report"
	"gradesheet/internal/scratch"
	"gradesheet/ports"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"
)

//go:embed static
var embeddedFiles embed.FS

const requestIDHeader = "X-Request-ID"

// Options tunes request handling. RateLimit caps conversion requests per
// client per RateWindow; zero disables it. StaticDir replaces the embedded
// upload page when set.
type Options struct {
	MaxFiles       int
	MaxBytes       int64
	DefaultMode    report.Mode
	MaxConcurrent  int64
	RequestTimeout time.Duration
	RateLimit      int
	RateWindow     time.Duration
	StaticDir      string
}

// DefaultOptions mirrors the config defaults
func DefaultOptions() Options {
	return Options{
		MaxFiles:       10,
		MaxBytes:       32 << 20,
		DefaultMode:    report.ModePerFile,
		MaxConcurrent:  8,
		RequestTimeout: 2 * time.Minute,
	}
}

// Server exposes the conversion API over HTTP
type Server struct {
	router       *gin.Engine
	orchestrator *report.Orchestrator
	storage      *scratch.Storage
	conversions  ports.ConversionLogRepository
	opts         Options
	slots        *semaphore.Weighted
	helpPage     []byte
	limiter      *rateLimiter
}

// NewServer wires the routes. A nil conversions repository disables the
// conversion log.
func NewServer(orchestrator *report.Orchestrator, storage *scratch.Storage, conversions ports.ConversionLogRepository, opts Options) *Server {
	defaults := DefaultOptions()
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = defaults.MaxFiles
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaults.MaxBytes
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = defaults.DefaultMode
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaults.MaxConcurrent
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaults.RequestTimeout
	}
	if opts.RateWindow <= 0 {
		opts.RateWindow = time.Minute
	}

	s := &Server{
		router:       gin.New(),
		orchestrator: orchestrator,
		storage:      storage,
		conversions:  conversions,
		opts:         opts,
		slots:        semaphore.NewWeighted(opts.MaxConcurrent),
		helpPage:     loadHelpPage(),
	}
	if opts.RateLimit > 0 {
		s.limiter = newRateLimiter(opts.RateLimit, opts.RateWindow)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger(), gin.Recovery(), requestID())
	// multipart parts above this size spill to temp files
	s.router.MaxMultipartMemory = 8 << 20
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/help", s.handleHelp)
	s.router.POST("/convert", s.rateLimit(), s.handleConvert)

	api := s.router.Group("/api")
	{
		api.POST("/convert", s.rateLimit(), s.handleConvert)
		api.POST("/preview", s.rateLimit(), s.handlePreview)
		api.GET("/conversions", s.handleListConversions)
	}

	if s.opts.StaticDir != "" {
		log.Printf("[Static] Serving static files from %s", s.opts.StaticDir)
		s.router.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.opts.StaticDir))))
		return
	}
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		log.Printf("[Static] Error creating static filesystem: %v", err)
		return
	}
	s.router.NoRoute(gin.WrapH(http.FileServer(http.FS(staticFS))))
}

// requestID accepts a well-formed X-Request-ID or assigns a new one
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := core.ParseRequestID(c.GetHeader(requestIDHeader))
		if err != nil {
			id = core.NewRequestID()
		}
		c.Set(requestIDHeader, id)
		c.Header(requestIDHeader, id.String())
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) core.RequestID {
	if v, ok := c.Get(requestIDHeader); ok {
		if id, ok := v.(core.RequestID); ok {
			return id
		}
	}
	return core.NewRequestID()
}
