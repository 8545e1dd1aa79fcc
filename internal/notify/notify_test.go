package notify

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/rummikube/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	subject string
	data    []byte
	err     error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.err
}

func TestPublishGameEnded(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn, nil)
	res := models.GameResult{GameID: uuid.New(), PlayerID: uuid.New(), Won: true, Turns: 7}

	require.NoError(t, p.PublishGameEnded(res))
	assert.Equal(t, SubjectGameEnded, conn.subject)

	var got models.GameResult
	require.NoError(t, json.Unmarshal(conn.data, &got))
	assert.Equal(t, res.GameID, got.GameID)
	assert.True(t, got.Won)
	assert.Equal(t, 7, got.Turns)
}

func TestOnGameEndLogsFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p := NewPublisher(&fakeConn{err: errors.New("nats: connection closed")}, logger)

	p.OnGameEnd(models.GameResult{GameID: uuid.New()})
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "Failed to publish game result.", hook.LastEntry().Message)
}
