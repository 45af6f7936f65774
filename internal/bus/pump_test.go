package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	keys   []string
	topics []string
	fail   string
}

func (s *recordingSender) Send(_ context.Context, key, _ []byte, headers map[string]string) error {
	if string(key) == s.fail {
		return errors.New("broker unavailable")
	}
	s.keys = append(s.keys, string(key))
	s.topics = append(s.topics, headers["topic"])
	return nil
}

func TestPump(t *testing.T) {
	q := NewQueue(4)
	require.NoError(t, q.TryPublish(Event{Topic: "trade.settled", Key: []byte("BTC/USDT")}))
	require.NoError(t, q.TryPublish(Event{Topic: "trade.settled", Key: []byte("bad")}))
	require.NoError(t, q.TryPublish(Event{Topic: "trade.settled", Key: []byte("ETH/USDT")}))
	q.Close()

	sender := &recordingSender{fail: "bad"}
	var failed []string
	Pump(context.Background(), q, sender, func(e Event, err error) {
		failed = append(failed, string(e.Key))
	})

	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT"}, sender.keys)
	assert.Equal(t, []string{"trade.settled", "trade.settled"}, sender.topics)
	assert.Equal(t, []string{"bad"}, failed)
}
