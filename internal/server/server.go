// Package server exposes the game over HTTP (gin) and a websocket.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	engine "github.com/jason-s-yu/rummikube/engine"
	"github.com/jason-s-yu/rummikube/internal/auth"
	"github.com/jason-s-yu/rummikube/internal/database"
	"github.com/jason-s-yu/rummikube/internal/game"
	"github.com/sirupsen/logrus"
)

const playerKey = "player_id"

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Server holds the HTTP handlers.
type Server struct {
	manager *game.Manager
	signer  *auth.Signer
	history database.Repository // optional
	checks  map[string]HealthCheck
	origins []string // websocket cross-origin host patterns
	log     *logrus.Logger
	router  *gin.Engine
}

// New builds the router. history may be nil.
func New(manager *game.Manager, signer *auth.Signer, history database.Repository, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		manager: manager,
		signer:  signer,
		history: history,
		checks:  make(map[string]HealthCheck),
		log:     logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.GET("/healthz", s.handleHealth)
	r.POST("/api/token", s.handleToken)
	r.GET("/ws", s.handleWebsocket)

	api := r.Group("/api", s.requirePlayer())
	api.POST("/games", s.handleNewGame)
	api.GET("/games/current", s.handleCurrent)
	api.DELETE("/games/current", s.handleAbandon)
	api.POST("/games/current/move", s.handleMove)
	api.POST("/games/current/draw", s.handleAction(engine.ActionDraw))
	api.POST("/games/current/validate", s.handleAction(engine.ActionValidate))
	api.POST("/games/current/next", s.handleAction(engine.ActionNextTurn))
	api.GET("/games/history", s.handleHistory)

	s.router = r
	return s
}

// AddHealthCheck registers a dependency for /healthz.
func (s *Server) AddHealthCheck(name string, check HealthCheck) {
	s.checks[name] = check
}

// AllowOrigins sets the host patterns (path.Match syntax) a browser on
// another origin may open the websocket from.
func (s *Server) AllowOrigins(patterns ...string) {
	s.origins = append([]string(nil), patterns...)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("HTTP request.")
	}
}

// playerFromRequest reads the bearer token from the Authorization header,
// or the token query parameter for browsers opening a websocket.
func (s *Server) playerFromRequest(c *gin.Context) (uuid.UUID, error) {
	token := c.Query("token")
	if h := c.GetHeader("Authorization"); h != "" {
		token = strings.TrimPrefix(h, "Bearer ")
	}
	if token == "" {
		return uuid.Nil, auth.ErrInvalidToken
	}
	return s.signer.Verify(token)
}

func (s *Server) requirePlayer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := s.playerFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(playerKey, id)
		c.Next()
	}
}

func playerID(c *gin.Context) uuid.UUID {
	return c.MustGet(playerKey).(uuid.UUID)
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			deps[name] = err.Error()
			continue
		}
		deps[name] = "ok"
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "sessions": s.manager.Len(), "deps": deps})
}

type tokenRequest struct {
	PlayerID string `json:"playerId"`
}

// handleToken issues a token for a new player id. A caller holding a valid
// token gets a fresh one for the same player; a bare player id is refused.
func (s *Server) handleToken(c *gin.Context) {
	var req tokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	id := uuid.New()
	if h := c.GetHeader("Authorization"); h != "" {
		current, err := s.signer.Verify(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if req.PlayerID != "" && req.PlayerID != current.String() {
			c.JSON(http.StatusForbidden, gin.H{"error": "playerId does not match token"})
			return
		}
		id = current
	} else if req.PlayerID != "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "resuming a player requires its current token"})
		return
	}

	token, err := s.signer.Issue(id)
	if err != nil {
		s.log.WithError(err).Error("Failed to issue token.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "playerId": id})
}

type actionResponse struct {
	Outcome string         `json:"outcome"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	State   game.StateView `json:"state"`
}

func (s *Server) handleNewGame(c *gin.Context) {
	sess := s.manager.NewGame(playerID(c))
	c.JSON(http.StatusCreated, actionResponse{Outcome: "started", State: sess.State()})
}

// session loads the caller's session or writes a 404.
func (s *Server) session(c *gin.Context) (*game.Session, bool) {
	sess, err := s.manager.Get(c.Request.Context(), playerID(c))
	if errors.Is(err, game.ErrNoGame) {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrorMessage(err, engine.ActionMove)})
		return nil, false
	}
	if err != nil {
		s.log.WithError(err).Error("Failed to load session.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load session"})
		return nil, false
	}
	return sess, true
}

func (s *Server) handleCurrent(c *gin.Context) {
	sess, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, actionResponse{Outcome: "none", State: sess.State()})
}

func (s *Server) handleAbandon(c *gin.Context) {
	if err := s.manager.Remove(c.Request.Context(), playerID(c)); err != nil {
		s.log.WithError(err).Error("Failed to remove session.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove session"})
		return
	}
	c.Status(http.StatusNoContent)
}

type moveRequest struct {
	From  engine.Zone `json:"from"`
	To    engine.Zone `json:"to"`
	Index *int        `json:"index" binding:"required"`
}

func (s *Server) handleMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, ok := s.session(c)
	if !ok {
		return
	}
	outcome := engine.OutcomeNone
	if sess.MoveTile(req.From, req.To, *req.Index) {
		outcome = engine.OutcomeMoved
	}
	c.JSON(http.StatusOK, actionResponse{Outcome: outcome.String(), State: sess.State()})
}

func (s *Server) handleAction(kind engine.ActionKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := s.session(c)
		if !ok {
			return
		}
		outcome, err := sess.Apply(engine.Action{Kind: kind})
		resp := actionResponse{Outcome: outcome.String(), State: sess.State()}
		if err != nil {
			resp.Error = err.Error()
			resp.Message = game.ErrorMessage(err, kind)
			c.JSON(statusFor(err), resp)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// statusFor maps a refused action to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrOpeningTooLow), errors.Is(err, engine.ErrInvalidBoard):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrWrongPhase), errors.Is(err, engine.ErrEmptyDeck), errors.Is(err, engine.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, game.ErrNoGame):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, gin.H{"games": []interface{}{}})
		return
	}
	results, err := s.history.ListResults(c.Request.Context(), playerID(c), 20)
	if err != nil {
		s.log.WithError(err).Error("Failed to list results.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list games"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": results})
}
