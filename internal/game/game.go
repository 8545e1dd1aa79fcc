// internal/game/game.go
package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/rummikube/engine"
	"github.com/jason-s-yu/rummikube/internal/models"
	"github.com/sirupsen/logrus"
)

// OnGameEndFunc defines the signature for a callback function executed when a game ends.
// It receives the final result of the session.
type OnGameEndFunc func(result models.GameResult)

// GameEventType represents the type of a game-related event broadcast to the player.
type GameEventType string

// Constants defining the GameEvent types sent over the websocket.
const (
	EventGameStart    GameEventType = "game_start"
	EventPlayerMove   GameEventType = "player_move"
	EventPlayerDraw   GameEventType = "player_draw"
	EventTurnAccepted GameEventType = "turn_accepted"
	EventTurnRejected GameEventType = "turn_rejected"
	EventTurnPassed   GameEventType = "turn_passed" // Validate pressed after the turn was already done.
	EventNewTurn      GameEventType = "new_turn"
	EventActionFail   GameEventType = "action_fail" // Draw or next turn refused.
	EventSyncState    GameEventType = "sync_state"
	EventGameEnd      GameEventType = "game_end"
)

// EventMove describes a tile transfer within a GameEvent.
type EventMove struct {
	From  engine.Zone `json:"from"`
	To    engine.Zone `json:"to"`
	Index int         `json:"index"`
}

// GameEvent is the standard structure for broadcasting game state changes and actions.
type GameEvent struct {
	Type    GameEventType `json:"type"`
	GameID  uuid.UUID     `json:"gameId"`
	Message string        `json:"message,omitempty"` // Status line for the player.
	Tile    *engine.Tile  `json:"tile,omitempty"`    // Tile moved or drawn.
	Move    *EventMove    `json:"move,omitempty"`

	Payload map[string]interface{} `json:"payload,omitempty"` // Additional arbitrary data.

	State  *StateView         `json:"state,omitempty"`
	Result *models.GameResult `json:"result,omitempty"` // Set on game_end.
}

// ActionRecorder appends entries to a game's action log.
type ActionRecorder interface {
	RecordAction(ctx context.Context, rec models.ActionRecord) error
}

// SnapshotStore persists live sessions so they survive a restart.
type SnapshotStore interface {
	SaveSession(ctx context.Context, rec models.SessionRecord) error
	LoadSession(ctx context.Context, playerID uuid.UUID) (*models.SessionRecord, error)
	DeleteSession(ctx context.Context, playerID uuid.UUID) error
}

// HistoryStore keeps turn history and final results.
type HistoryStore interface {
	RecordTurn(ctx context.Context, rec models.TurnRecord) error
	SaveResult(ctx context.Context, res models.GameResult) error
}

// storeTimeout bounds every call into a store.
const storeTimeout = 2 * time.Second

// Session is one player's game. All exported methods lock Mu; unexported
// helpers assume the lock is held by the caller.
type Session struct {
	ID        uuid.UUID // Unique identifier for this game instance.
	PlayerID  uuid.UUID // The player who owns the session.
	StartedAt time.Time

	Rules  engine.HouseRules
	Engine *engine.Game // The authoritative game state.

	queue       MoveQueue
	actionIndex int  // Sequential index for the action log.
	ended       bool // OnGameEnd already fired.

	Mu sync.Mutex

	// Collaborators. Any of them may be nil.
	BroadcastFn func(ev GameEvent)
	OnGameEnd   OnGameEndFunc
	Recorder    ActionRecorder
	Store       SnapshotStore
	History     HistoryStore
	SeedFn      func() uint64

	log *logrus.Entry
}

// NewSession creates a session for playerID. The game is not dealt until
// NewGame is called.
func NewSession(playerID uuid.UUID, rules engine.HouseRules, logger *logrus.Logger) *Session {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Session{
		PlayerID: playerID,
		Rules:    rules,
		SeedFn:   func() uint64 { return uint64(time.Now().UnixNano()) },
	}
	s.log = logger.WithField("player_id", playerID)
	return s
}

// NewGame deals a fresh game, replacing whatever the session held.
func (s *Session) NewGame() {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.newGame()
}

func (s *Session) newGame() {
	id, _ := uuid.NewRandom()
	s.ID = id
	s.StartedAt = time.Now()
	s.actionIndex = 0
	s.ended = false
	s.queue.Clear()
	s.log = s.log.WithField("game_id", id)

	s.Engine = engine.NewGame(s.SeedFn(), s.Rules)

	s.log.WithField("deck", s.Engine.DeckCount()).Info("Game started.")
	s.logAction("game_start", map[string]interface{}{"hand": len(s.Engine.Hand()), "deck": s.Engine.DeckCount()})
	s.fireEvent(GameEvent{
		Type:    EventGameStart,
		Message: msgStarted(s.Rules.OpeningThreshold),
	})
	s.persist()
}

// Restore loads a stored session record in place of the current state.
func (s *Session) Restore(rec models.SessionRecord) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	s.ID = rec.GameID
	s.StartedAt = rec.StartedAt
	s.actionIndex = rec.ActionIndex
	s.Rules = rec.Engine.Rules
	s.Engine = engine.FromSnapshot(rec.Engine)
	s.ended = s.Engine.Won()
	s.queue.Clear()
	s.log = s.log.WithField("game_id", rec.GameID)
	s.log.Info("Session restored.")
}

// Record returns the persisted form of the session.
func (s *Session) Record() models.SessionRecord {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.record()
}

func (s *Session) record() models.SessionRecord {
	return models.SessionRecord{
		GameID:      s.ID,
		PlayerID:    s.PlayerID,
		StartedAt:   s.StartedAt,
		ActionIndex: s.actionIndex,
		Engine:      s.Engine.Save(),
	}
}

// Started reports whether a game has been dealt.
func (s *Session) Started() bool {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.Engine != nil
}

// Result summarises the session as it stands.
func (s *Session) Result() models.GameResult {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.result()
}

func (s *Session) result() models.GameResult {
	return models.GameResult{
		GameID:    s.ID,
		PlayerID:  s.PlayerID,
		Won:       s.Engine.Won(),
		Turns:     int(s.Engine.TurnNumber()),
		HandLeft:  len(s.Engine.Hand()),
		HandValue: s.Engine.HandValue(),
		DeckLeft:  s.Engine.DeckCount(),
		StartedAt: s.StartedAt,
		EndedAt:   time.Now(),
	}
}

// endGame fires OnGameEnd and stores the final result once.
func (s *Session) endGame() {
	if s.ended {
		return
	}
	s.ended = true
	res := s.result()
	s.log.WithFields(logrus.Fields{"won": res.Won, "turns": res.Turns}).Info("Game ended.")

	if s.History != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		if err := s.History.SaveResult(ctx, res); err != nil {
			s.log.WithError(err).Error("Failed to store game result.")
		}
		cancel()
	}
	s.fireEvent(GameEvent{Type: EventGameEnd, Message: msgWon, Result: &res})
	if s.OnGameEnd != nil {
		s.OnGameEnd(res)
	}
}

// fireEvent broadcasts an event via the BroadcastFn callback. State is
// attached to every event so clients can re-render from any of them.
func (s *Session) fireEvent(ev GameEvent) {
	ev.GameID = s.ID
	if ev.State == nil && s.Engine != nil {
		view := s.stateView()
		ev.State = &view
	}
	if s.BroadcastFn != nil {
		s.BroadcastFn(ev)
	} else {
		s.log.WithField("event", ev.Type).Debug("BroadcastFn is nil, event dropped.")
	}
}

// persist saves the session snapshot. Saved synchronously so stored
// snapshots never go backwards.
func (s *Session) persist() {
	if s.Store == nil || s.Engine == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.Store.SaveSession(ctx, s.record()); err != nil {
		s.log.WithError(err).Error("Failed to persist session snapshot.")
	}
}

// recordTurn stores one validation attempt in the turn history.
func (s *Session) recordTurn(outcome, reason string, value int) {
	if s.History == nil {
		return
	}
	rec := models.TurnRecord{
		GameID:    s.ID,
		PlayerID:  s.PlayerID,
		Turn:      int(s.Engine.TurnNumber()),
		Outcome:   outcome,
		Reason:    reason,
		Value:     value,
		BoardSize: len(s.Engine.Board()),
		HandSize:  len(s.Engine.Hand()),
		CreatedAt: time.Now(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.History.RecordTurn(ctx, rec); err != nil {
		s.log.WithError(err).Error("Failed to record turn.")
	}
}

// logAction sends action details to the action log.
func (s *Session) logAction(actionType string, payload map[string]interface{}) {
	s.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{}) // Ensure payload is not nil.
	}
	if s.Recorder == nil {
		return
	}
	record := models.ActionRecord{
		GameID:        s.ID,
		ActionIndex:   s.actionIndex,
		ActorUserID:   s.PlayerID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}

	// The goroutine must not touch s: newGame and Restore replace the logger.
	recorder, log := s.Recorder, s.log
	go func(rec models.ActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := recorder.RecordAction(ctx, rec); err != nil {
			log.WithError(err).Errorf("Failed recording action %d ('%s').", rec.ActionIndex, rec.ActionType)
		}
	}(record)
}
