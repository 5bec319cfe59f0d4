package assigner

import (
	"math"

	"github.com/slavakukuyev/elevator-fleet/internal/domain"
)

// CostAssigner is a Go-native hall-request assigner that scores every
// (elevator, hall call) pair with a distance-plus-direction-penalty
// cost function and greedily assigns each call to its lowest-cost
// elevator. OutOfOrder elevators are excluded from consideration.
//
// The cost model mirrors a simple SCAN-dispatcher: idle elevators cost
// pure distance; an elevator already travelling toward the call in the
// matching direction costs distance alone; one travelling toward the
// call but in the opposite direction must be passed up until it turns
// around, so it costs distance plus half the building's span; one
// travelling away must reach its end, reverse, and come back, costing
// the full detour. A small per-elevator load penalty breaks ties in
// favor of less busy cars.
type CostAssigner struct {
	MinFloor int
	MaxFloor int
}

// NewCostAssigner returns a CostAssigner for a building spanning
// [minFloor, maxFloor].
func NewCostAssigner(minFloor, maxFloor int) *CostAssigner {
	return &CostAssigner{MinFloor: minFloor, MaxFloor: maxFloor}
}

// Assign implements Assigner.
func (c *CostAssigner) Assign(hallCalls []HallCall, elevators []ElevatorInput) (map[string][]Assignment, error) {
	out := make(map[string][]Assignment, len(elevators))
	for _, e := range elevators {
		out[e.Owner] = make([]Assignment, len(hallCalls))
	}

	candidates := make([]ElevatorInput, 0, len(elevators))
	for _, e := range elevators {
		if e.Behaviour.IsOperational() {
			candidates = append(candidates, e)
		}
	}

	if len(candidates) == 0 {
		return out, nil
	}

	for floor, call := range hallCalls {
		if call.Up {
			owner := c.bestFor(candidates, floor, true)
			a := out[owner][floor]
			a.Up = true
			out[owner][floor] = a
		}
		if call.Down {
			owner := c.bestFor(candidates, floor, false)
			a := out[owner][floor]
			a.Down = true
			out[owner][floor] = a
		}
	}

	return out, nil
}

func (c *CostAssigner) bestFor(candidates []ElevatorInput, floor int, up bool) string {
	bestCost := math.MaxFloat64
	bestOwner := candidates[0].Owner

	for _, e := range candidates {
		cost := c.cost(e, floor, up)
		if cost < bestCost {
			bestCost = cost
			bestOwner = e.Owner
		}
	}
	return bestOwner
}

func (c *CostAssigner) cost(e ElevatorInput, floor int, up bool) float64 {
	var pending int
	for _, requested := range e.CabRequests {
		if requested {
			pending++
		}
	}
	load := 0.5 * float64(pending)
	distance := abs(e.Floor - floor)

	if e.Behaviour == domain.BehaviourIdle {
		return float64(distance) + load
	}

	movingToward := (e.Direction == domain.DirectionUp && floor >= e.Floor) ||
		(e.Direction == domain.DirectionDown && floor <= e.Floor)

	if movingToward {
		sameDirection := (e.Direction == domain.DirectionUp) == up
		if sameDirection {
			return float64(distance) + load
		}
		span := float64(c.MaxFloor - c.MinFloor)
		return float64(distance) + span/2 + load
	}

	var detour int
	if e.Direction == domain.DirectionUp {
		detour = (c.MaxFloor - e.Floor) + (c.MaxFloor - floor)
	} else {
		detour = (e.Floor - c.MinFloor) + (floor - c.MinFloor)
	}
	return float64(detour) + load
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
