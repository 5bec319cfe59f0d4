// Package assigner implements the hall-request assigner: a pure
// function from the union of outstanding hall calls and elevator
// states to a per-elevator assignment of which hall calls that
// elevator must serve.
package assigner

import "github.com/slavakukuyev/elevator-fleet/internal/domain"

// ElevatorInput is the reduced view of one elevator the assigner needs:
// its behaviour, floor, direction, and cab requests. Owner is the
// elevator's name in the fleet's elevators map.
type ElevatorInput struct {
	Owner       string
	Behaviour   domain.Behaviour
	Floor       int
	Direction   domain.Direction
	CabRequests domain.CabRequests
}

// HallCall is the reduced (up_active, down_active) pair for one floor.
type HallCall struct {
	Up   bool
	Down bool
}

// Assignment is the per-floor (up, down) pair telling one elevator
// which hall calls it now owns.
type Assignment struct {
	Up   bool
	Down bool
}

// Assigner maps fleet state to per-elevator hall assignments.
type Assigner interface {
	Assign(hallCalls []HallCall, elevators []ElevatorInput) (map[string][]Assignment, error)
}
