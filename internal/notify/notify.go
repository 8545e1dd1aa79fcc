// Package notify publishes game lifecycle events to NATS.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jason-s-yu/rummikube/internal/models"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// SubjectGameEnded carries a models.GameResult for every finished game.
const SubjectGameEnded = "rummikube.games.ended"

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends game results to NATS.
type Publisher struct {
	conn Conn
	log  *logrus.Entry
}

// NewPublisher wraps an established connection.
func NewPublisher(conn Conn, logger *logrus.Logger) *Publisher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Publisher{conn: conn, log: logger.WithField("component", "notify")}
}

// Connect dials the NATS server at url.
func Connect(url string) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("rummikube-server"),
		nats.Timeout(10 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(5),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return nc, nil
}

// PublishGameEnded announces a finished game.
func (p *Publisher) PublishGameEnded(res models.GameResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal game result: %w", err)
	}
	if err := p.conn.Publish(SubjectGameEnded, data); err != nil {
		return fmt.Errorf("publish %s: %w", SubjectGameEnded, err)
	}
	return nil
}

// OnGameEnd adapts the publisher to a session end callback. Failures are
// logged, not returned.
func (p *Publisher) OnGameEnd(res models.GameResult) {
	if err := p.PublishGameEnded(res); err != nil {
		p.log.WithError(err).WithField("game_id", res.GameID).Error("Failed to publish game result.")
	}
}
