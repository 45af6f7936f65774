package bus

import (
	"context"

	"github.com/yanun0323/logs"
)

// Sender delivers one event to an external broker.
type Sender interface {
	Send(ctx context.Context, key, value []byte, headers map[string]string) error
}

// Pump drains q into sender until the context is done or the queue is closed and drained. A failed
// send is logged and counted; the event is not retried.
func Pump(ctx context.Context, q *Queue, sender Sender, onFailure func(Event, error)) {
	q.Run(ctx, func(e Event) {
		err := sender.Send(ctx, e.Key, e.Payload, map[string]string{"topic": e.Topic})
		if err == nil {
			return
		}
		logs.Errorf("forward event, topic: %s, key: %s, err: %+v", e.Topic, e.Key, err)
		if onFailure != nil {
			onFailure(e, err)
		}
	})
}
