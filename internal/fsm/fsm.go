// Package fsm implements the per-elevator finite state machine: the
// component that drives one physical car's motor, door, and lights
// from sensor events and an externally assigned request vector.
package fsm

import (
	"context"
	"log/slog"
	"time"

	"github.com/slavakukuyev/elevator-fleet/internal/constants"
	"github.com/slavakukuyev/elevator-fleet/internal/domain"
	"github.com/slavakukuyev/elevator-fleet/internal/driver"
	"github.com/slavakukuyev/elevator-fleet/internal/timer"
)

// Event is emitted whenever the elevator begins moving, opens its
// door, or finishes a door cycle. The dispatch layer uses it to clear
// served cab and hall requests and to propagate the new ElevatorState.
type Event struct {
	Floor     int
	Direction domain.Direction
	Behaviour domain.Behaviour
}

// FSM drives a single elevator car. It owns the car's ElevatorState
// and reacts to driver-reported sensor events and externally supplied
// request vectors, emitting Events for the dispatch layer to consume.
type FSM struct {
	drv         driver.Driver
	doorTimer   *timer.Timer
	doorDur     time.Duration
	floorCount  int
	logger      *slog.Logger

	state       domain.ElevatorState
	requests    domain.RequestVector
	obstructed  bool

	requestsCh chan domain.RequestVector
	events     chan Event
}

// New returns an FSM for a car with floorCount floors, driving drv,
// using doorDuration as the door-hold timeout.
func New(drv driver.Driver, floorCount int, doorDuration time.Duration, logger *slog.Logger) *FSM {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSM{
		drv:        drv,
		doorTimer:  timer.New(),
		doorDur:    doorDuration,
		floorCount: floorCount,
		logger:     logger.With(slog.String("component", constants.ComponentFSM)),
		state:      domain.NewElevatorState(floorCount),
		requests:   domain.NewRequestVector(floorCount),
		requestsCh: make(chan domain.RequestVector, 1),
		events:     make(chan Event, 16),
	}
}

// Events returns the channel the dispatch layer reads ElevatorEvents
// from.
func (f *FSM) Events() <-chan Event {
	return f.events
}

// SetRequests atomically replaces the assigned request vector. Safe to
// call from another goroutine; the FSM's Run loop applies it on its
// next iteration.
func (f *FSM) SetRequests(vec domain.RequestVector) {
	select {
	case <-f.requestsCh:
	default:
	}
	f.requestsCh <- vec
}

// State returns a copy of the FSM's current ElevatorState.
func (f *FSM) State() domain.ElevatorState {
	return f.state.Clone()
}

// Run drives the FSM's event loop until ctx is cancelled.
func (f *FSM) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case vec := <-f.requestsCh:
			f.requests = vec
			if f.state.Behaviour == domain.BehaviourIdle {
				f.applyDecision(false)
			}

		case floor := <-f.drv.FloorSensor():
			f.onFloorArrival(floor)

		case <-f.drv.StopButton():
			f.onStopButton()

		case obstructed := <-f.drv.Obstruction():
			f.obstructed = obstructed

		case <-f.doorTimer.Channel():
			f.onDoorTimerExpiry()
		}
	}
}

func (f *FSM) onFloorArrival(floor int) {
	if f.state.Behaviour != domain.BehaviourMoving {
		return
	}
	f.state.Floor = floor
	_ = f.drv.SetFloorIndicator(floor)

	if shouldStop(f.requests, floor, f.state.Direction) {
		f.enterDoorOpen(f.state.Direction)
		return
	}
}

func (f *FSM) onStopButton() {
	if f.state.Behaviour == domain.BehaviourOutOfOrder {
		return
	}
	f.state.Behaviour = domain.BehaviourOutOfOrder
	f.state.Direction = domain.DirectionStop
	_ = f.drv.SetMotorDirection(domain.DirectionStop)
	f.logger.Warn("elevator latched out of order", slog.Int("floor", f.state.Floor))
}

func (f *FSM) onDoorTimerExpiry() {
	if f.state.Behaviour != domain.BehaviourDoorOpen {
		return
	}
	if f.obstructed {
		f.doorTimer.Start(f.doorDur)
		return
	}
	_ = f.drv.SetDoorLight(false)
	f.applyDecision(true)
}

// applyDecision calls decide() with the FSM's current direction and
// floor, applies the resulting transition, and emits an Event when the
// transition represents beginning to move, opening the door, or (when
// fromDoorCycle) finishing a door cycle regardless of outcome.
func (f *FSM) applyDecision(fromDoorCycle bool) {
	if f.state.Behaviour == domain.BehaviourOutOfOrder {
		return
	}

	newDir, newBehaviour := decide(f.requests, f.state.Floor, f.state.Direction)

	f.state.Direction = newDir
	f.state.Behaviour = newBehaviour

	switch newBehaviour {
	case domain.BehaviourMoving:
		_ = f.drv.SetMotorDirection(newDir)
		f.emit()
	case domain.BehaviourDoorOpen:
		f.enterDoorOpen(newDir)
	case domain.BehaviourIdle:
		_ = f.drv.SetMotorDirection(domain.DirectionStop)
		if fromDoorCycle {
			f.emit()
		}
	}
}

func (f *FSM) enterDoorOpen(dir domain.Direction) {
	f.state.Direction = dir
	f.state.Behaviour = domain.BehaviourDoorOpen
	_ = f.drv.SetMotorDirection(domain.DirectionStop)
	_ = f.drv.SetDoorLight(true)
	// The event is emitted before any local clearing happens; the FSM
	// itself never clears hall requests, only the dispatch layer does
	// once it observes this Event.
	f.emit()
	// Drop what this stop serves from the FSM's own copy of the assigned
	// vector, so the next decide() does not reopen the door for it.
	if floor := f.state.Floor; floor >= 0 && floor < len(f.requests) {
		served := append(domain.RequestVector(nil), f.requests...)
		served[floor].Cab = false
		if dir != domain.DirectionDown {
			served[floor].HallUp = false
		}
		if dir != domain.DirectionUp {
			served[floor].HallDown = false
		}
		f.requests = served
	}
	f.doorTimer.Start(f.doorDur)
}

func (f *FSM) emit() {
	select {
	case f.events <- Event{Floor: f.state.Floor, Direction: f.state.Direction, Behaviour: f.state.Behaviour}:
	default:
		f.logger.Warn("event channel full, dropping stale consumer behind", slog.Int("floor", f.state.Floor))
		<-f.events
		f.events <- Event{Floor: f.state.Floor, Direction: f.state.Direction, Behaviour: f.state.Behaviour}
	}
}
