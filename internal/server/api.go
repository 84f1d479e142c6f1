package server

import (
	"net/http"
	"time"

	"StockGuess/internal/recorder"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	DefaultTimeout      = 30 * time.Second
	ServiceName         = "stockguess"
	ServiceVersion      = "1.0.0"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
	DefaultScoreLimit   = 10
	DefaultPingInterval = 30 * time.Second
)

// Server exposes games over HTTP and WebSocket.
type Server struct {
	Registry *Registry
	Recorder recorder.Recorder
	// PingInterval paces websocket keepalives. A peer that misses two is dropped.
	PingInterval time.Duration

	upgrader websocket.Upgrader
}

// New creates a server over reg. A nil rec serves empty leaderboards.
func New(reg *Registry, rec recorder.Recorder) *Server {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Server{
		Registry:     reg,
		Recorder:     rec,
		PingInterval: DefaultPingInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// SetupRoutes configures all API routes.
func (s *Server) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/health", s.HealthCheck)

	api := router.Group("/api")
	api.POST("/games", s.CreateGame)
	api.GET("/games/:id", s.GetGame)
	api.POST("/games/:id/load", s.LoadTicker)
	api.POST("/games/:id/guess", s.SubmitGuess)
	api.POST("/games/:id/end", s.EndGame)
	api.GET("/scores/:ticker", s.BestScores)

	router.GET("/ws/games/:id", s.StreamGame)

	return router
}

// HTTPServer wraps the router in an http.Server bound to addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
