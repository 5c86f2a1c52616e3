package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"

	"github.com/qirtas-app/qirtas/internal/cache"
	"github.com/qirtas-app/qirtas/internal/config"
	"github.com/qirtas-app/qirtas/internal/document"
	"github.com/qirtas-app/qirtas/internal/layout"
	"github.com/qirtas-app/qirtas/internal/lexicon"
	"github.com/qirtas-app/qirtas/internal/middleware"
	"github.com/qirtas-app/qirtas/internal/observability"
	"github.com/qirtas-app/qirtas/internal/ocr"
	"github.com/qirtas-app/qirtas/internal/tooltip"
	"github.com/qirtas-app/qirtas/internal/translate"
)

// Server represents the HTTP server
type Server struct {
	app               *fiber.App
	config            *config.Config
	metrics           *observability.Metrics
	store             *DocumentStore
	documentHandler   *DocumentHandler
	tooltipHandler    *TooltipHandler
	hoverHandler      *HoverHandler
	monitoringHandler *MonitoringHandler
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config) *Server {
	app := fiber.New(fiber.Config{
		ServerHeader:          "Qirtas",
		AppName:               "Qirtas v1.0.0",
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		DisableStartupMessage: !cfg.Debug,
		ErrorHandler:          customErrorHandler,
		Prefork:               false,
	})

	metrics := observability.NewMetrics()

	// Layout engine with configured thresholds
	engine := layout.NewEngine()
	engine.MinScriptRunRatio = cfg.Layout.MinScriptRunRatio
	engine.MinWords = cfg.Layout.MinWords
	engine.HeightPad = cfg.Layout.HeightPad
	engine.MinBoxWidth = cfg.Layout.MinBoxWidth

	// OCR cascade: engine pair from the configured provider
	orchestrator := buildOrchestrator(cfg)

	// Rasterizer for page images and OCR input
	rasterizer := document.NewPdftoppmRasterizer(cfg.OCR.MaxImageWidth)

	pipeline := document.NewPipeline(engine, orchestrator, rasterizer, cfg.OCR.Language, cfg.OCR.RasterDPI)

	// Tooltip resolution: lexicon, LRU cache, translation fallback
	lex := lexicon.Load(cfg.Lexicon.Path)
	tooltipCache := cache.NewLRU(cfg.Cache.TooltipCapacity)
	translator := buildTranslator(cfg)
	resolver := tooltip.NewResolver(lex, tooltipCache, translator, cfg.Translate.SourceLang, cfg.Translate.TargetLang)

	store := NewDocumentStore(DefaultStoreCapacity)

	server := &Server{
		app:               app,
		config:            cfg,
		metrics:           metrics,
		store:             store,
		documentHandler:   NewDocumentHandler(pipeline, store, metrics),
		tooltipHandler:    NewTooltipHandler(resolver, translator, cfg.Translate.SourceLang, cfg.Translate.TargetLang, metrics),
		hoverHandler:      NewHoverHandler(resolver, metrics),
		monitoringHandler: NewMonitoringHandler(store, lex, tooltipCache, rasterizer, metrics),
	}

	log.Debug().Msg("Setting up middlewares")
	server.setupMiddlewares()

	log.Debug().Msg("Setting up routes")
	server.setupRoutes()

	log.Debug().Msg("Server initialization complete")
	return server
}

// buildOrchestrator creates the OCR cascade from config. With the ocrspace
// provider the primary and fallback are two engine modes of the same API;
// with tesseract both calls go to the local engine, so no fallback is wired.
func buildOrchestrator(cfg *config.Config) *ocr.Orchestrator {
	switch cfg.OCR.Provider {
	case "tesseract":
		return ocr.NewOrchestrator(ocr.NewTesseractEngine(), nil, cfg.OCR.Timeout)
	default:
		client := &http.Client{Timeout: cfg.OCR.Timeout + 5*time.Second}
		primary := ocr.NewSpaceEngine(cfg.OCR.Endpoint, cfg.OCR.APIKey, cfg.OCR.PrimaryEngine, client)
		fallback := ocr.NewSpaceEngine(cfg.OCR.Endpoint, cfg.OCR.APIKey, cfg.OCR.FallbackEngine, client)
		return ocr.NewOrchestrator(primary, fallback, cfg.OCR.Timeout)
	}
}

// buildTranslator creates the translation client from config.
func buildTranslator(cfg *config.Config) translate.Client {
	client := &http.Client{Timeout: 15 * time.Second}
	switch cfg.Translate.Provider {
	case "libretranslate":
		return translate.NewLibreTranslate(cfg.Translate.Endpoint, cfg.Translate.APIKey, client)
	default:
		return translate.NewMyMemory(cfg.Translate.Endpoint, client)
	}
}

// setupMiddlewares sets up global middlewares
func (s *Server) setupMiddlewares() {
	// Request ID middleware - must be first for tracing
	s.app.Use(requestid.New())

	// Logger middleware
	if s.config.Debug {
		s.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
		}))
	}

	// Recover middleware - catch panics
	s.app.Use(recover.New(recover.Config{
		EnableStackTrace: s.config.Debug,
	}))

	// CORS middleware - the reader frontend is served from another origin
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Prometheus HTTP metrics
	s.app.Use(s.metrics.MetricsMiddleware())

	// Compression middleware
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelDefault,
	}))
}

// setupRoutes sets up all routes
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.app.Get("/health", s.handleHealth)

	// Prometheus metrics endpoint
	s.app.Get("/metrics", s.metrics.Handler())

	// API v1 routes - versioned for future compatibility
	v1 := s.app.Group("/api/v1")

	// Document routes - upload is rate limited per IP
	documents := v1.Group("/documents")
	documents.Post("/", middleware.UploadLimiter(), s.documentHandler.Upload)
	documents.Get("/:id", s.documentHandler.Get)
	documents.Delete("/:id", s.documentHandler.Delete)
	documents.Get("/:id/pages/:number", s.documentHandler.GetPage)
	documents.Get("/:id/pages/:number/image", s.documentHandler.GetPageImage)

	// Tooltip and translation routes
	v1.Get("/tooltip", s.tooltipHandler.Get)
	v1.Post("/translate", middleware.TranslateLimiter(), s.tooltipHandler.Translate)

	// Hover WebSocket endpoint (not versioned as it's WebSocket)
	s.app.Get("/hover", s.hoverHandler.HandleWebSocket)

	// Monitoring routes
	s.monitoringHandler.RegisterRoutes(s.app)

	// 404 handler
	s.app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error": "Not Found",
			"path":  c.Path(),
		})
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	return s.app.Listen(s.config.Server.Address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// App returns the underlying Fiber app instance for testing
func (s *Server) App() *fiber.App {
	return s.app
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		log.Error().Err(err).Str("path", c.Path()).Msg("Server error")
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
