package fsm

import "github.com/slavakukuyev/elevator-fleet/internal/domain"

func requestsAbove(vec domain.RequestVector, floor int) bool {
	for f := floor + 1; f < len(vec); f++ {
		if vec[f].Cab || vec[f].HallUp || vec[f].HallDown {
			return true
		}
	}
	return false
}

func requestsBelow(vec domain.RequestVector, floor int) bool {
	for f := 0; f < floor; f++ {
		if vec[f].Cab || vec[f].HallUp || vec[f].HallDown {
			return true
		}
	}
	return false
}

// requestsHere reports whether there is a request at floor that the
// elevator, travelling in dir, would stop for at this exact floor. The
// asymmetric variant: a cab call always counts; a hall call only counts
// when it matches the direction of travel, or when dir is Stop (in
// which case any hall call here counts).
func requestsHere(vec domain.RequestVector, floor int, dir domain.Direction) bool {
	if floor < 0 || floor >= len(vec) {
		return false
	}
	r := vec[floor]
	if r.Cab {
		return true
	}
	switch dir {
	case domain.DirectionUp:
		return r.HallUp
	case domain.DirectionDown:
		return r.HallDown
	default:
		return r.HallUp || r.HallDown
	}
}

// decide chooses the next (direction, behaviour) pair for an elevator
// currently at floor, travelling curDir, given its assigned request
// vector. It implements spec's asymmetric priority order: continue past
// the current floor before reconsidering a stop here, and only reverse
// direction once nothing remains ahead.
func decide(vec domain.RequestVector, floor int, curDir domain.Direction) (domain.Direction, domain.Behaviour) {
	switch curDir {
	case domain.DirectionUp:
		if requestsAbove(vec, floor) {
			return domain.DirectionUp, domain.BehaviourMoving
		}
		if requestsHere(vec, floor, domain.DirectionUp) {
			return domain.DirectionUp, domain.BehaviourDoorOpen
		}
		if requestsHere(vec, floor, domain.DirectionStop) {
			return domain.DirectionDown, domain.BehaviourDoorOpen
		}
		if requestsBelow(vec, floor) {
			return domain.DirectionDown, domain.BehaviourMoving
		}
		return domain.DirectionStop, domain.BehaviourIdle

	case domain.DirectionDown:
		if requestsBelow(vec, floor) {
			return domain.DirectionDown, domain.BehaviourMoving
		}
		if requestsHere(vec, floor, domain.DirectionDown) {
			return domain.DirectionDown, domain.BehaviourDoorOpen
		}
		if requestsHere(vec, floor, domain.DirectionStop) {
			return domain.DirectionUp, domain.BehaviourDoorOpen
		}
		if requestsAbove(vec, floor) {
			return domain.DirectionUp, domain.BehaviourMoving
		}
		return domain.DirectionStop, domain.BehaviourIdle

	default: // Stop
		if requestsHere(vec, floor, domain.DirectionStop) {
			return domain.DirectionStop, domain.BehaviourDoorOpen
		}
		if requestsAbove(vec, floor) {
			return domain.DirectionUp, domain.BehaviourMoving
		}
		if requestsBelow(vec, floor) {
			return domain.DirectionDown, domain.BehaviourMoving
		}
		return domain.DirectionStop, domain.BehaviourIdle
	}
}

// shouldStop reports whether an elevator moving in dir should stop at
// floor given the assigned request vector.
func shouldStop(vec domain.RequestVector, floor int, dir domain.Direction) bool {
	switch dir {
	case domain.DirectionUp:
		if floor < 0 || floor >= len(vec) {
			return true
		}
		return vec[floor].HallUp || vec[floor].Cab || !requestsAbove(vec, floor)
	case domain.DirectionDown:
		if floor < 0 || floor >= len(vec) {
			return true
		}
		return vec[floor].HallDown || vec[floor].Cab || !requestsBelow(vec, floor)
	default:
		return true
	}
}
