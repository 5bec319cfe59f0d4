package driver

import (
	"sync"

	"github.com/slavakukuyev/elevator-fleet/internal/domain"
)

// Fake is an in-memory Driver used by tests and by cmd/elevator-node
// when no DRIVER_ADDR is configured. It
// records commanded state and lets a test inject sensor/button events
// by writing to its channels.
type Fake struct {
	mu sync.Mutex

	motorDirection domain.Direction
	doorLight      bool
	floorIndicator int
	callLights     map[ButtonPress]bool

	floorSensor chan int
	stopButton  chan struct{}
	obstruction chan bool
	callButtons chan ButtonPress

	closed bool
}

// NewFake returns a Fake driver parked with its motor stopped and door
// closed. Channels are buffered so test code can inject events without
// blocking on the FSM's consumption.
func NewFake() *Fake {
	return &Fake{
		motorDirection: domain.DirectionStop,
		callLights:     make(map[ButtonPress]bool),
		floorSensor:    make(chan int, 16),
		stopButton:     make(chan struct{}, 16),
		obstruction:    make(chan bool, 16),
		callButtons:    make(chan ButtonPress, 16),
	}
}

func (f *Fake) SetMotorDirection(d domain.Direction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.motorDirection = d
	return nil
}

func (f *Fake) SetDoorLight(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doorLight = on
	return nil
}

func (f *Fake) SetFloorIndicator(floor int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.floorIndicator = floor
	return nil
}

func (f *Fake) SetCallButtonLight(floor int, kind ButtonKind, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callLights[ButtonPress{Floor: floor, Kind: kind}] = on
	return nil
}

func (f *Fake) FloorSensor() <-chan int        { return f.floorSensor }
func (f *Fake) StopButton() <-chan struct{}    { return f.stopButton }
func (f *Fake) Obstruction() <-chan bool       { return f.obstruction }
func (f *Fake) CallButtons() <-chan ButtonPress { return f.callButtons }

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.floorSensor)
	close(f.stopButton)
	close(f.obstruction)
	close(f.callButtons)
	return nil
}

// MotorDirection reports the last commanded motor direction.
func (f *Fake) MotorDirection() domain.Direction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.motorDirection
}

// DoorLight reports the last commanded door light state.
func (f *Fake) DoorLight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doorLight
}

// FloorIndicator reports the last commanded floor indicator value.
func (f *Fake) FloorIndicator() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.floorIndicator
}

// CallLight reports whether the given call button light is commanded on.
func (f *Fake) CallLight(floor int, kind ButtonKind) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callLights[ButtonPress{Floor: floor, Kind: kind}]
}

// ArriveAt injects a floor-sensor event.
func (f *Fake) ArriveAt(floor int) { f.floorSensor <- floor }

// PressStop injects a stop-button event.
func (f *Fake) PressStop() { f.stopButton <- struct{}{} }

// SetObstructed injects an obstruction-level change.
func (f *Fake) SetObstructed(on bool) { f.obstruction <- on }

// PressButton injects a call-button event.
func (f *Fake) PressButton(floor int, kind ButtonKind) {
	f.callButtons <- ButtonPress{Floor: floor, Kind: kind}
}
