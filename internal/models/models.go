// Package models holds the records shared between the game service and its
// stores.
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	engine "github.com/jason-s-yu/rummikube/engine"
)

// ErrNotFound is returned by stores when no record exists for a key.
var ErrNotFound = errors.New("record not found")

// SessionRecord is the persisted form of a live game session.
type SessionRecord struct {
	GameID      uuid.UUID       `json:"gameId"`
	PlayerID    uuid.UUID       `json:"playerId"`
	StartedAt   time.Time       `json:"startedAt"`
	ActionIndex int             `json:"actionIndex"`
	Engine      engine.Snapshot `json:"engine"`
}

// ActionRecord is one entry of a game's action log.
type ActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"`
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"` // unix millis
}

// TurnRecord is one validation attempt, accepted or not.
type TurnRecord struct {
	GameID    uuid.UUID `json:"gameId"`
	PlayerID  uuid.UUID `json:"playerId"`
	Turn      int       `json:"turn"`
	Outcome   string    `json:"outcome"` // accepted, passed, won, rejected
	Reason    string    `json:"reason,omitempty"`
	Value     int       `json:"value"`
	BoardSize int       `json:"boardSize"`
	HandSize  int       `json:"handSize"`
	CreatedAt time.Time `json:"createdAt"`
}

// GameResult summarises a game that ended or was replaced.
type GameResult struct {
	GameID    uuid.UUID `json:"gameId"`
	PlayerID  uuid.UUID `json:"playerId"`
	Won       bool      `json:"won"`
	Turns     int       `json:"turns"`
	HandLeft  int       `json:"handLeft"`
	HandValue int       `json:"handValue"`
	DeckLeft  int       `json:"deckLeft"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`
}
