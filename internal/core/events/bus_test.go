package events_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/frahmantamala/hrms/internal/core/events"
	"github.com/frahmantamala/hrms/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishRunsHandlersAfterRequestEnds(t *testing.T) {
	bus := events.NewEventBus(logger.Discard())

	var calls atomic.Int32
	var sawCancel atomic.Bool
	release := make(chan struct{})
	bus.Subscribe(events.EventTypeLeaveApplied, func(ctx context.Context, ev events.Event) error {
		<-release
		if ctx.Err() != nil {
			sawCancel.Store(true)
		}
		calls.Add(1)
		return nil
	})
	bus.Subscribe(events.EventTypeLeaveApplied, func(context.Context, events.Event) error {
		calls.Add(1)
		return errors.New("ignored")
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, bus.Publish(ctx, events.NewLeaveAppliedEvent(1, 70, "Asha", 3)))
	cancel()
	close(release)
	bus.Wait()

	assert.Equal(t, int32(2), calls.Load())
	assert.False(t, sawCancel.Load(), "handler context must outlive the publisher's")
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := events.NewEventBus(logger.Discard())
	assert.NoError(t, bus.Publish(context.Background(), events.NewClockedInEvent(1, 1, "2026-01-12")))
	assert.NoError(t, bus.PublishSync(context.Background(), events.NewClockedInEvent(1, 1, "2026-01-12")))
	bus.Wait()
}

func TestPublishSyncStopsAtFirstError(t *testing.T) {
	bus := events.NewEventBus(logger.Discard())
	var second bool
	bus.Subscribe(events.EventTypeMonthLocked, func(context.Context, events.Event) error {
		return errors.New("store down")
	})
	bus.Subscribe(events.EventTypeMonthLocked, func(context.Context, events.Event) error {
		second = true
		return nil
	})

	err := bus.PublishSync(context.Background(), events.NewMonthLockedEvent("2026-01", "SYSTEM"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), events.EventTypeMonthLocked)
	assert.False(t, second)
}

func TestEventsCarryIdentityAndPayload(t *testing.T) {
	ev := events.NewTimesheetDecidedEvent(9, 7, "2026-01-12", "Approved")
	assert.Equal(t, events.EventTypeTimesheetDecided, ev.EventType())
	assert.NotEmpty(t, ev.EventID())
	assert.False(t, ev.OccurredAt().IsZero())
	assert.NotEqual(t, ev.EventID(), events.NewTimesheetDecidedEvent(9, 7, "2026-01-12", "Approved").EventID())
}
