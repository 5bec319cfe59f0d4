package fsm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slavakukuyev/elevator-fleet/internal/domain"
	"github.com/slavakukuyev/elevator-fleet/internal/driver"
)

func waitForEvent(t *testing.T, events <-chan Event, timeout time.Duration) Event {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(timeout):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestFSM_S1_SingleHallCallServedThenIdle(t *testing.T) {
	t.Parallel()

	fake := driver.NewFake()
	f := New(fake, 4, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	reqs := domain.NewRequestVector(4)
	reqs[2].HallUp = true
	f.SetRequests(reqs)

	ev := waitForEvent(t, f.Events(), time.Second)
	assert.Equal(t, domain.BehaviourMoving, ev.Behaviour)
	assert.Equal(t, domain.DirectionUp, ev.Direction)

	fake.ArriveAt(1)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, domain.BehaviourMoving, f.State().Behaviour)

	fake.ArriveAt(2)
	ev = waitForEvent(t, f.Events(), time.Second)
	assert.Equal(t, domain.BehaviourDoorOpen, ev.Behaviour)
	assert.Equal(t, 2, ev.Floor)

	ev = waitForEvent(t, f.Events(), time.Second)
	assert.Equal(t, domain.BehaviourIdle, ev.Behaviour)
}

func TestFSM_S4_ObstructionHoldsDoorOpen(t *testing.T) {
	t.Parallel()

	fake := driver.NewFake()
	f := New(fake, 4, 15*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	reqs := domain.NewRequestVector(4)
	reqs[0].Cab = true
	f.SetRequests(reqs)

	ev := waitForEvent(t, f.Events(), time.Second)
	require.Equal(t, domain.BehaviourDoorOpen, ev.Behaviour)

	fake.SetObstructed(true)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, domain.BehaviourDoorOpen, f.State().Behaviour)
	assert.False(t, fake.DoorLight() == false)

	fake.SetObstructed(false)
	ev = waitForEvent(t, f.Events(), time.Second)
	assert.Equal(t, domain.BehaviourIdle, ev.Behaviour)
}

func TestFSM_S5_StopButtonLatchesOutOfOrder(t *testing.T) {
	t.Parallel()

	fake := driver.NewFake()
	f := New(fake, 4, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	fake.PressStop()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, domain.BehaviourOutOfOrder, f.State().Behaviour)

	reqs := domain.NewRequestVector(4)
	reqs[2].HallUp = true
	f.SetRequests(reqs)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, domain.BehaviourOutOfOrder, f.State().Behaviour)
	assert.Equal(t, domain.DirectionStop, fake.MotorDirection())
}
