package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	q := NewQueue(2)

	require.NoError(t, q.TryPublish(Event{Topic: "a"}))
	require.NoError(t, q.TryPublish(Event{Topic: "b"}))
	require.ErrorIs(t, q.TryPublish(Event{Topic: "c"}), ErrQueueFull)

	q.Close()
	require.ErrorIs(t, q.TryPublish(Event{Topic: "d"}), ErrQueueClosed)

	var got []string
	q.Run(context.Background(), func(e Event) {
		got = append(got, e.Topic)
	})
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestQueueStopsOnContext(t *testing.T) {
	q := NewQueue(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	q.Run(ctx, func(Event) { t.Fatal("unexpected event") })
}

func TestQueueCloseDuringPublish(t *testing.T) {
	q := NewQueue(64)

	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				err := q.TryPublish(Event{Topic: "t"})
				switch err {
				case nil:
					accepted.Add(1)
				case ErrQueueFull, ErrQueueClosed:
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}
		}()
	}

	var delivered int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(context.Background(), func(Event) { delivered++ })
	}()

	q.Close()
	wg.Wait()
	<-done

	require.ErrorIs(t, q.TryPublish(Event{}), ErrQueueClosed)
	assert.Equal(t, accepted.Load(), delivered)
}
