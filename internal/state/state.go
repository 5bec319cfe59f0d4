// Package state implements SystemState, the replicated fleet-level
// view of elevator states and hall requests held by the master and
// shadowed by every slave.
package state

import (
	"github.com/slavakukuyev/elevator-fleet/internal/assigner"
	"github.com/slavakukuyev/elevator-fleet/internal/domain"
)

// SystemState is the full replicated fleet state: every known
// elevator's ElevatorState keyed by its chosen name, the building's
// hall-request vector, and a monotonic iteration counter used to gate
// merges.
type SystemState struct {
	OwnerName    string                          `json:"ownerName"`
	Elevators    map[string]domain.ElevatorState `json:"elevators"`
	HallRequests domain.HallRequests             `json:"hallRequests"`
	Iteration    int64                           `json:"iteration"`
}

// New returns an empty SystemState for a building with floorCount
// floors, issued by ownerName.
func New(ownerName string, floorCount int) *SystemState {
	return &SystemState{
		OwnerName:    ownerName,
		Elevators:    make(map[string]domain.ElevatorState),
		HallRequests: domain.NewHallRequests(floorCount),
	}
}

// FloorCount returns the number of floors this state's hall-request
// vector covers.
func (s *SystemState) FloorCount() int {
	return len(s.HallRequests)
}

// Clone returns an independent deep copy of s.
func (s *SystemState) Clone() *SystemState {
	out := &SystemState{
		OwnerName:    s.OwnerName,
		Iteration:    s.Iteration,
		HallRequests: s.HallRequests.Clone(),
		Elevators:    make(map[string]domain.ElevatorState, len(s.Elevators)),
	}
	for name, el := range s.Elevators {
		out.Elevators[name] = el.Clone()
	}
	return out
}

// SetLocalElevatorState overlays the given ElevatorState into the
// elevators map under name, replacing whatever the map previously held
// for that name. Authority for one's own ElevatorState is always local.
func (s *SystemState) SetLocalElevatorState(name string, el domain.ElevatorState) {
	s.Elevators[name] = el
}

// RequestsForElevator derives the RequestVector a named elevator's FSM
// should run with: its own cab requests plus whichever hall calls are
// currently assigned to it.
func (s *SystemState) RequestsForElevator(name string) domain.RequestVector {
	vec := domain.NewRequestVector(s.FloorCount())
	if el, ok := s.Elevators[name]; ok {
		for floor, requested := range el.CabRequests {
			vec[floor].Cab = requested
		}
	}
	for floor, hr := range s.HallRequests {
		if hr.Up.AssignedTo == name {
			vec[floor].HallUp = true
		}
		if hr.Down.AssignedTo == name {
			vec[floor].HallDown = true
		}
	}
	return vec
}

// RequestHall marks floor's up (or down) hall button as Requested if
// it is currently Inactive. Returns whether the state changed.
func (s *SystemState) RequestHall(floor int, up bool) bool {
	if floor < 0 || floor >= len(s.HallRequests) {
		return false
	}
	hr := &s.HallRequests[floor]
	target := &hr.Up
	if !up {
		target = &hr.Down
	}
	if target.Inactive() {
		target.Requested = true
		return true
	}
	return false
}

// ClearHall forces floor's up (or down) hall button back to Inactive,
// used once the owning elevator has opened its door there.
func (s *SystemState) ClearHall(floor int, up bool) {
	if floor < 0 || floor >= len(s.HallRequests) {
		return
	}
	hr := &s.HallRequests[floor]
	if up {
		hr.Up = domain.HallRequestState{}
	} else {
		hr.Down = domain.HallRequestState{}
	}
}

// Assign recomputes hall-call ownership across the whole fleet using a
// via the given Assigner, and writes Assigned(name) into every
// currently Requested or Assigned hall-request entry. Calls that no
// elevator can serve (no operational elevators) are left Requested.
func (s *SystemState) Assign(a assigner.Assigner) error {
	calls := make([]assigner.HallCall, len(s.HallRequests))
	for i, hr := range s.HallRequests {
		calls[i] = assigner.HallCall{
			Up:   hr.Up.Requested,
			Down: hr.Down.Requested,
		}
	}

	inputs := make([]assigner.ElevatorInput, 0, len(s.Elevators))
	for name, el := range s.Elevators {
		inputs = append(inputs, assigner.ElevatorInput{
			Owner:       name,
			Behaviour:   el.Behaviour,
			Floor:       el.Floor,
			Direction:   el.Direction,
			CabRequests: el.CabRequests,
		})
	}

	result, err := a.Assign(calls, inputs)
	if err != nil {
		return err
	}

	for floor := range s.HallRequests {
		if s.HallRequests[floor].Up.Requested {
			s.HallRequests[floor].Up.AssignedTo = ownerOf(result, floor, true)
		}
		if s.HallRequests[floor].Down.Requested {
			s.HallRequests[floor].Down.AssignedTo = ownerOf(result, floor, false)
		}
	}
	return nil
}

func ownerOf(result map[string][]assigner.Assignment, floor int, up bool) string {
	for name, assignments := range result {
		if floor >= len(assignments) {
			continue
		}
		a := assignments[floor]
		if (up && a.Up) || (!up && a.Down) {
			return name
		}
	}
	return ""
}
