package sse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-feedback/internal/models"
)

func record(id, eventID string) models.Feedback {
	return models.Feedback{
		ID:         id,
		EventID:    eventID,
		AuthorName: "Alex",
		Content:    "Great",
		Rating:     5,
		CreatedAt:  time.Now().UTC(),
	}
}

func receive(t *testing.T, ch <-chan models.Feedback) models.Feedback {
	t.Helper()
	select {
	case fb := <-ch:
		return fb
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for feedback")
		return models.Feedback{}
	}
}

func assertNoDelivery(t *testing.T, ch <-chan models.Feedback) {
	t.Helper()
	select {
	case fb := <-ch:
		t.Fatalf("unexpected delivery: %+v", fb)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeWithoutFilterReceivesEverything(t *testing.T) {
	emitter := NewFeedbackEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := emitter.Subscribe(ctx, nil)

	emitter.Publish(record("fb-1", "event-1"))
	emitter.Publish(record("fb-2", "event-2"))

	assert.Equal(t, "fb-1", receive(t, ch).ID)
	assert.Equal(t, "fb-2", receive(t, ch).ID)
}

func TestSubscribeWithFilterOnlyMatchingEvent(t *testing.T) {
	emitter := NewFeedbackEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eventID := "event-1"
	ch := emitter.Subscribe(ctx, &eventID)

	emitter.Publish(record("fb-other", "event-2"))
	emitter.Publish(record("fb-mine", "event-1"))

	fb := receive(t, ch)
	assert.Equal(t, "fb-mine", fb.ID)
	assertNoDelivery(t, ch)
}

func TestPublishOrderPreservedPerSubscriber(t *testing.T) {
	emitter := NewFeedbackEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := emitter.Subscribe(ctx, nil)

	for i := 0; i < 5; i++ {
		emitter.Publish(record(string(rune('a'+i)), "event-1"))
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, string(rune('a'+i)), receive(t, ch).ID)
	}
}

func TestCancelRemovesSubscriberAndClosesChannel(t *testing.T) {
	emitter := NewFeedbackEmitter()
	ctx, cancel := context.WithCancel(context.Background())

	ch := emitter.Subscribe(ctx, nil)
	require.Equal(t, 1, emitter.ClientCount())

	cancel()

	// The cleanup goroutine closes the channel
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("channel was not closed after cancellation")
	}
	assert.Equal(t, 0, emitter.ClientCount())
}

func TestCancelDoesNotAffectOtherSubscribers(t *testing.T) {
	emitter := NewFeedbackEmitter()

	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel2()

	ch1 := emitter.Subscribe(ctx1, nil)
	ch2 := emitter.Subscribe(ctx2, nil)

	cancel1()
	select {
	case <-ch1:
	case <-time.After(time.Second):
		t.Fatal("first channel was not closed")
	}

	emitter.Publish(record("fb-1", "event-1"))
	assert.Equal(t, "fb-1", receive(t, ch2).ID)
}

func TestPublishDuringSubscriberChurn(t *testing.T) {
	emitter := NewFeedbackEmitter()

	// A client disconnecting mid-publish closes its channel; a send must
	// never land on it. Keep publishing while subscribers come and go.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			cancels := make([]context.CancelFunc, 0, 32)
			for j := 0; j < 32; j++ {
				ctx, cancel := context.WithCancel(context.Background())
				emitter.Subscribe(ctx, nil)
				cancels = append(cancels, cancel)
			}
			for _, cancel := range cancels {
				cancel()
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		default:
			emitter.Publish(record("fb", "event-1"))
		}
	}
}

func TestSlowSubscriberDoesNotBlockPublisher(t *testing.T) {
	emitter := NewFeedbackEmitter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slow := emitter.Subscribe(ctx, nil)
	fast := emitter.Subscribe(ctx, nil)

	// Overflow the slow subscriber's buffer without draining it. Publish
	// must never block; the fast subscriber keeps receiving.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			emitter.Publish(record("fb", "event-1"))
			<-fast
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	// The slow subscriber got at most a buffer's worth, not everything
	assert.LessOrEqual(t, len(slow), subscriberBuffer)
}
