// internal/game/queue.go
package game

import (
	"fmt"

	engine "github.com/jason-s-yu/rummikube/engine"
	"github.com/sirupsen/logrus"
)

// MoveQueue is a FIFO of actions waiting to be applied. It is not safe for
// concurrent use on its own; the owning Session guards it.
type MoveQueue struct {
	pending []engine.Action
}

// Push appends actions to the back of the queue.
func (q *MoveQueue) Push(actions ...engine.Action) {
	q.pending = append(q.pending, actions...)
}

// Pop removes and returns the front action.
func (q *MoveQueue) Pop() (engine.Action, bool) {
	if len(q.pending) == 0 {
		return engine.Action{}, false
	}
	a := q.pending[0]
	q.pending = q.pending[1:]
	return a, true
}

// Len returns the number of queued actions.
func (q *MoveQueue) Len() int { return len(q.pending) }

// Clear drops every queued action.
func (q *MoveQueue) Clear() { q.pending = nil }

// Pending returns a copy of the queued actions, front first.
func (q *MoveQueue) Pending() []engine.Action {
	out := make([]engine.Action, len(q.pending))
	copy(out, q.pending)
	return out
}

// Enqueue adds actions to the session's queue and returns its new length.
// Nothing is applied until Drain.
func (s *Session) Enqueue(actions ...engine.Action) int {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.queue.Push(actions...)
	return s.queue.Len()
}

// Queued returns the actions waiting in the queue.
func (s *Session) Queued() []engine.Action {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.queue.Pending()
}

// Drain applies queued actions in order and returns how many were applied.
// Ignored moves count as applied. On the first error the rest of the queue
// is dropped and the error is returned.
func (s *Session) Drain() (int, error) {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	applied := 0
	for {
		a, ok := s.queue.Pop()
		if !ok {
			return applied, nil
		}
		if _, err := s.apply(a); err != nil {
			dropped := s.queue.Len()
			s.queue.Clear()
			s.log.WithFields(logrus.Fields{"action": a.Kind.String(), "applied": applied, "dropped": dropped}).Warn("Queue drain stopped.")
			return applied, fmt.Errorf("queued action %d (%s): %w", applied, a.Kind, err)
		}
		applied++
	}
}
