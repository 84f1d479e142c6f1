package server

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"StockGuess/internal/engine"
	"StockGuess/internal/model"

	"github.com/gin-gonic/gin"
)

type loadRequest struct {
	Ticker string `json:"ticker"`
}

type guessRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"version":   ServiceVersion,
		"games":     s.Registry.Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateGame handles POST /api/games.
func (s *Server) CreateGame(c *gin.Context) {
	g := s.Registry.Create()
	c.JSON(http.StatusCreated, newGameResponse(g.ID, nil, g.View()))
}

// GetGame handles GET /api/games/:id.
func (s *Server) GetGame(c *gin.Context) {
	g, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newGameResponse(g.ID, nil, g.View()))
}

// LoadTicker handles POST /api/games/:id/load.
func (s *Server) LoadTicker(c *gin.Context) {
	g, ok := s.lookup(c)
	if !ok {
		return
	}
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}
	s.dispatch(c, g, engine.LoadRequested{Ticker: req.Ticker})
}

// SubmitGuess handles POST /api/games/:id/guess.
func (s *Server) SubmitGuess(c *gin.Context) {
	g, ok := s.lookup(c)
	if !ok {
		return
	}
	var req guessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "direction is required")
		return
	}
	dir, err := model.ParseDirection(req.Direction)
	if err != nil {
		s.badRequest(c, err.Error())
		return
	}
	s.dispatch(c, g, engine.GuessSubmitted{Direction: dir})
}

// EndGame handles POST /api/games/:id/end.
func (s *Server) EndGame(c *gin.Context) {
	g, ok := s.lookup(c)
	if !ok {
		return
	}
	s.dispatch(c, g, engine.SessionEnded{})
}

// BestScores handles GET /api/scores/:ticker.
func (s *Server) BestScores(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Param("ticker")))
	limit := DefaultScoreLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			s.badRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	games, err := s.Recorder.BestScores(ticker, limit)
	if err != nil {
		s.handleError(c, err, http.StatusInternalServerError, "Internal server error")
		return
	}
	type score struct {
		StartDate string `json:"start_date"`
		LastDate  string `json:"last_date"`
		Guesses   int    `json:"guesses"`
		Score     int    `json:"score"`
	}
	out := make([]score, 0, len(games))
	for _, g := range games {
		out = append(out, score{StartDate: g.StartDate, LastDate: g.LastDate, Guesses: g.Guesses, Score: g.Score})
	}
	c.JSON(http.StatusOK, gin.H{"ticker": ticker, "scores": out})
}

func (s *Server) dispatch(c *gin.Context, g *Game, msg engine.Message) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	events, view := g.Dispatch(ctx, msg)
	c.JSON(http.StatusOK, newGameResponse(g.ID, events, view))
}

func (s *Server) lookup(c *gin.Context) (*Game, bool) {
	g, ok := s.Registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		return nil, false
	}
	return g, true
}

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func (s *Server) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	log.Printf("[ERROR] %s %s rid=%s: %v", c.Request.Method, c.Request.URL.Path, c.GetString(RequestIDContextKey), err)
	c.JSON(statusCode, gin.H{"error": userMessage})
}
