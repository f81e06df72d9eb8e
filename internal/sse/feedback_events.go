package sse

import (
	"context"
	"sync"

	"ms-feedback/internal/models"
)

// subscriberBuffer bounds each client channel; a subscriber that cannot
// keep up loses records instead of blocking the publisher.
const subscriberBuffer = 16

type subscriber struct {
	ch      chan models.Feedback
	eventID *string // nil means no filter, deliver everything
}

// FeedbackEmitter fans newly created feedback out to all current
// subscribers of the single logical topic. Delivery is at-most-once per
// registered subscriber; late joiners get no replay.
type FeedbackEmitter struct {
	mu   sync.RWMutex
	subs []*subscriber
}

func NewFeedbackEmitter() *FeedbackEmitter {
	return &FeedbackEmitter{}
}

// Subscribe registers a client channel, optionally filtered to a single
// event id. The registration is removed and the channel closed when ctx
// is cancelled.
func (e *FeedbackEmitter) Subscribe(ctx context.Context, eventID *string) <-chan models.Feedback {
	sub := &subscriber{
		ch:      make(chan models.Feedback, subscriberBuffer),
		eventID: eventID,
	}

	e.mu.Lock()
	e.subs = append(e.subs, sub)
	e.mu.Unlock()

	// Remove the client when it disconnects
	go func() {
		<-ctx.Done()
		e.remove(sub)
	}()

	return sub.ch
}

// Publish hands the record to every subscriber whose filter matches.
// Sends are non-blocking so one slow client cannot stall the write path
// or other clients. The read lock is held for the whole loop: remove
// closes channels under the write lock, so a send can never hit a
// closed channel.
func (e *FeedbackEmitter) Publish(fb models.Feedback) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, sub := range e.subs {
		if sub.eventID != nil && *sub.eventID != fb.EventID {
			continue
		}
		select {
		case sub.ch <- fb:
		default:
			// Buffer full, drop the record for this client
		}
	}
}

// ClientCount returns the number of currently registered subscribers.
func (e *FeedbackEmitter) ClientCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subs)
}

func (e *FeedbackEmitter) remove(sub *subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.subs {
		if s == sub {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			close(sub.ch)
			break
		}
	}
}
