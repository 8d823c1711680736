// Package bus carries store change notifications between client contexts
// that share one device database.
//
// A Change names the key that was written and the context that wrote it.
// Subscribers receive changes from every context, including their own;
// filtering by Origin is the subscriber's job. Delivery is best-effort and
// unordered across publishers: a subscriber that falls behind loses the
// oldest pending changes, never the newest.
package bus

import (
	"context"
	"errors"
)

var ErrClosed = errors.New("bus closed")

// Change is one store write notification. An empty Key means "something
// changed" without saying what.
type Change struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// Publisher announces store writes.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

// Subscriber delivers changes until ctx is done; the channel is then closed.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan Change, error)
}

type Bus interface {
	Publisher
	Subscriber
	Close() error
}

const subscriberBuffer = 64

// offer delivers c without blocking. When ch is full the oldest pending
// change is dropped to make room.
func offer(ch chan Change, c Change) {
	for {
		select {
		case ch <- c:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
