package api

import (
	"sync"

	"github.com/banachtech/statarb/config"
	"github.com/banachtech/statarb/data"
	db "github.com/banachtech/statarb/db/sqlc"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Server serves HTTP requests for the pair screener and backtester.
type Server struct {
	cfg     *config.Config
	store   db.Store
	source  data.Source
	metrics *Metrics
	router  *gin.Engine

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewServer creates a new HTTP server and set up routing.
func NewServer(cfg *config.Config, store db.Store, source data.Source) *Server {
	server := &Server{
		cfg:      cfg,
		store:    store,
		source:   source,
		metrics:  NewMetrics(),
		limiters: make(map[string]*rate.Limiter),
	}

	server.setupRouter()
	return server
}

func (server *Server) setupRouter() {
	router := gin.New()
	router.Use(gin.Recovery(), server.observe)

	router.GET("/healthz", server.healthz)
	router.GET("/metrics", gin.WrapH(server.metrics.Handler()))

	authRoutes := router.Group("/v1").Use(server.authentication, server.rateLimit)
	authRoutes.POST("/screen", server.screen)
	authRoutes.GET("/screen/latest", server.latestScreen)
	authRoutes.POST("/backtest", server.backtest)
	authRoutes.GET("/backtest/:id", server.getBacktest)
	authRoutes.GET("/backtest/:id/xlsx", server.backtestWorkbook)
	server.router = router
}

// Start runs the HTTP server on a specific address.
func (server *Server) Start(address string) error {
	return server.router.Run(address)
}

func (server *Server) healthz(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}
