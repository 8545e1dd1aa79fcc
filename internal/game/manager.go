// internal/game/manager.go
package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/rummikube/engine"
	"github.com/jason-s-yu/rummikube/internal/models"
	"github.com/sirupsen/logrus"
)

// subscriberBuffer is the number of events a slow subscriber may lag behind
// before events are dropped for it.
const subscriberBuffer = 32

// Subscription receives the events of one player's sessions.
type Subscription struct {
	PlayerID uuid.UUID
	ch       chan GameEvent
}

// Events returns the channel events are delivered on. It is closed by
// Manager.Unsubscribe.
func (sub *Subscription) Events() <-chan GameEvent { return sub.ch }

// Manager keeps one session per player and fans session events out to the
// player's subscribers.
type Manager struct {
	Rules     engine.HouseRules
	Store     SnapshotStore
	Recorder  ActionRecorder
	History   HistoryStore
	OnGameEnd OnGameEndFunc
	SeedFn    func() uint64 // Optional; sessions default to a time seed.

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	subs     map[uuid.UUID]map[*Subscription]struct{}
	logger   *logrus.Logger
}

// NewManager creates an empty manager.
func NewManager(rules engine.HouseRules, logger *logrus.Logger) *Manager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Manager{
		Rules:    rules,
		sessions: make(map[uuid.UUID]*Session),
		subs:     make(map[uuid.UUID]map[*Subscription]struct{}),
		logger:   logger,
	}
}

// newSession builds a session wired to the manager's collaborators.
func (m *Manager) newSession(playerID uuid.UUID) *Session {
	s := NewSession(playerID, m.Rules, m.logger)
	s.Store = m.Store
	s.Recorder = m.Recorder
	s.History = m.History
	s.OnGameEnd = m.OnGameEnd
	if m.SeedFn != nil {
		s.SeedFn = m.SeedFn
	}
	s.BroadcastFn = func(ev GameEvent) { m.publish(playerID, ev) }
	return s
}

// NewGame deals a new game for playerID, replacing any previous session.
func (m *Manager) NewGame(playerID uuid.UUID) *Session {
	s := m.newSession(playerID)

	m.mu.Lock()
	prev := m.sessions[playerID]
	m.sessions[playerID] = s
	m.mu.Unlock()

	if prev != nil {
		m.logger.WithFields(logrus.Fields{"player_id": playerID, "game_id": prev.ID}).Info("Replacing previous session.")
	}
	s.NewGame()
	return s
}

// Get returns the player's session, loading it from the snapshot store if
// it is not in memory. ErrNoGame is returned when there is none.
func (m *Manager) Get(ctx context.Context, playerID uuid.UUID) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[playerID]
	m.mu.Unlock()
	if ok {
		return s, nil
	}
	if m.Store == nil {
		return nil, ErrNoGame
	}

	rec, err := m.Store.LoadSession(ctx, playerID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrNoGame
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return m.Restore(*rec), nil
}

// Restore installs a session built from a stored record. A session already
// in memory for the same player wins over the record.
func (m *Manager) Restore(rec models.SessionRecord) *Session {
	s := m.newSession(rec.PlayerID)
	s.Restore(rec)

	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.sessions[rec.PlayerID]; ok {
		return cur
	}
	m.sessions[rec.PlayerID] = s
	return s
}

// Remove forgets the player's session and deletes its snapshot.
func (m *Manager) Remove(ctx context.Context, playerID uuid.UUID) error {
	m.mu.Lock()
	delete(m.sessions, playerID)
	m.mu.Unlock()

	if m.Store == nil {
		return nil
	}
	if err := m.Store.DeleteSession(ctx, playerID); err != nil && !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Len returns the number of sessions in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Subscribe registers a new event subscriber for playerID.
func (m *Manager) Subscribe(playerID uuid.UUID) *Subscription {
	sub := &Subscription{PlayerID: playerID, ch: make(chan GameEvent, subscriberBuffer)}
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.subs[playerID]
	if !ok {
		set = make(map[*Subscription]struct{})
		m.subs[playerID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// Unsubscribe removes sub and closes its channel. Calling it twice is safe.
func (m *Manager) Unsubscribe(sub *Subscription) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.subs[sub.PlayerID]
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(m.subs, sub.PlayerID)
	}
	close(sub.ch)
}

// publish delivers ev to every subscriber of playerID without blocking.
func (m *Manager) publish(playerID uuid.UUID, ev GameEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sub := range m.subs[playerID] {
		select {
		case sub.ch <- ev:
		default:
			m.logger.WithFields(logrus.Fields{"player_id": playerID, "event": ev.Type}).Warn("Subscriber buffer full, event dropped.")
		}
	}
}
