package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	engine "github.com/jason-s-yu/rummikube/engine"
	"github.com/jason-s-yu/rummikube/internal/game"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

// Command is a message a websocket client sends.
type Command struct {
	Type  string      `json:"type"` // new_game, move, draw, validate, next_turn, sync
	From  engine.Zone `json:"from,omitempty"`
	To    engine.Zone `json:"to,omitempty"`
	Index int         `json:"index,omitempty"`
}

// handleWebsocket streams the player's game events and applies commands.
// The token is passed as a query parameter or Authorization header.
func (s *Server) handleWebsocket(c *gin.Context) {
	player, err := s.playerFromRequest(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		s.log.WithError(err).Warn("Websocket accept failed.")
		return
	}
	defer conn.CloseNow()

	log := s.log.WithField("player_id", player)
	log.Info("Websocket connected.")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := s.manager.Subscribe(player)
	defer s.manager.Unsubscribe(sub)

	// Replies that do not come from a session, written by the same loop.
	direct := make(chan game.GameEvent, 4)
	go s.writeLoop(ctx, cancel, conn, sub, direct, log)

	if sess, err := s.manager.Get(ctx, player); err == nil {
		sess.Sync()
	}

	for {
		var cmd Command
		if err := wsjson.Read(ctx, conn, &cmd); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				log.Info("Websocket closed.")
			} else if !errors.Is(err, context.Canceled) {
				log.WithError(err).Debug("Websocket read failed.")
			}
			return
		}
		if ev, ok := s.handleCommand(ctx, player, cmd); ok {
			select {
			case direct <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleCommand applies cmd for player. It returns an event to send back
// when the session did not produce one itself.
func (s *Server) handleCommand(ctx context.Context, player uuid.UUID, cmd Command) (game.GameEvent, bool) {
	if cmd.Type == "new_game" {
		s.manager.NewGame(player)
		return game.GameEvent{}, false
	}

	var action engine.Action
	switch cmd.Type {
	case "sync":
	case "move":
		action = engine.Move(cmd.From, cmd.To, cmd.Index)
	default:
		kind, err := engine.ParseActionKind(cmd.Type)
		if err != nil {
			return game.GameEvent{Type: game.EventActionFail, Message: "Unknown command.", Payload: map[string]interface{}{"command": cmd.Type}}, true
		}
		action = engine.Action{Kind: kind}
	}

	sess, err := s.manager.Get(ctx, player)
	if err != nil {
		if !errors.Is(err, game.ErrNoGame) {
			s.log.WithError(err).WithField("player_id", player).Error("Failed to load session.")
		}
		return game.GameEvent{Type: game.EventActionFail, Message: game.ErrorMessage(game.ErrNoGame, action.Kind)}, true
	}
	if cmd.Type == "sync" {
		sess.Sync()
		return game.GameEvent{}, false
	}
	// Refusals are reported by the session as events; ignored moves are not,
	// so the client gets the state back to undo an optimistic drag.
	if outcome, err := sess.Apply(action); err == nil && outcome == engine.OutcomeNone {
		sess.Sync()
	}
	return game.GameEvent{}, false
}

func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sub *game.Subscription, direct <-chan game.GameEvent, log *logrus.Entry) {
	defer cancel()
	for {
		var ev game.GameEvent
		var ok bool
		select {
		case <-ctx.Done():
			return
		case ev, ok = <-sub.Events():
			if !ok {
				return
			}
		case ev = <-direct:
		}

		wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
		err := wsjson.Write(wctx, conn, ev)
		wcancel()
		if err != nil {
			log.WithError(err).Debug("Websocket write failed.")
			return
		}
	}
}
