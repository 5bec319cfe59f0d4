// Package driver defines the boundary between the elevator finite
// state machine and the physical (or simulated) hardware it commands.
// Everything on the far side of this interface — motor control, door
// actuation, button and sensor polling — is an external collaborator
// outside the coordination core; only the shape of that boundary is
// ours to specify.
package driver

import "github.com/slavakukuyev/elevator-fleet/internal/domain"

// ButtonKind identifies which call button was pressed.
type ButtonKind int

const (
	HallUp ButtonKind = iota
	HallDown
	Cab
)

// String returns a human-readable name for the button kind.
func (k ButtonKind) String() string {
	switch k {
	case HallUp:
		return "hall_up"
	case HallDown:
		return "hall_down"
	case Cab:
		return "cab"
	default:
		return "unknown"
	}
}

// ButtonPress is a single call-button event reported by the driver.
type ButtonPress struct {
	Floor int
	Kind  ButtonKind
}

// Driver is the hardware (or simulated hardware) collaborator the FSM
// drives commands into and polls events from. Implementations must be
// safe for the FSM's single goroutine to call concurrently with the
// event channels being drained by that same goroutine.
type Driver interface {
	SetMotorDirection(domain.Direction) error
	SetDoorLight(on bool) error
	SetFloorIndicator(floor int) error
	SetCallButtonLight(floor int, kind ButtonKind, on bool) error

	// FloorSensor yields the floor the car is currently level with,
	// once per arrival.
	FloorSensor() <-chan int
	// StopButton yields an edge-triggered event each time the stop
	// button is pressed.
	StopButton() <-chan struct{}
	// Obstruction yields the current obstruction level whenever it
	// changes.
	Obstruction() <-chan bool
	// CallButtons yields every external or internal button press.
	CallButtons() <-chan ButtonPress

	Close() error
}
