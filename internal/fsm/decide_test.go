package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slavakukuyev/elevator-fleet/internal/domain"
)

func vec(n int) domain.RequestVector {
	return domain.NewRequestVector(n)
}

func TestDecide_IdleNoRequests(t *testing.T) {
	t.Parallel()
	dir, beh := decide(vec(4), 0, domain.DirectionStop)
	assert.Equal(t, domain.DirectionStop, dir)
	assert.Equal(t, domain.BehaviourIdle, beh)
}

func TestDecide_FromStopPrefersRequestsHereOverMoving(t *testing.T) {
	t.Parallel()
	v := vec(4)
	v[1].Cab = true
	v[3].Cab = true
	dir, beh := decide(v, 1, domain.DirectionStop)
	assert.Equal(t, domain.DirectionStop, dir)
	assert.Equal(t, domain.BehaviourDoorOpen, beh)
}

func TestDecide_ContinuesUpWhenRequestsAbove(t *testing.T) {
	t.Parallel()
	v := vec(4)
	v[3].HallUp = true
	dir, beh := decide(v, 1, domain.DirectionUp)
	assert.Equal(t, domain.DirectionUp, dir)
	assert.Equal(t, domain.BehaviourMoving, beh)
}

func TestDecide_AsymmetricOppositeHallReversesBeforeOpening(t *testing.T) {
	t.Parallel()
	// moving up, only a hall_down call pending at this floor and nothing
	// above: asymmetric decide does not open the door for it as Up; since
	// nothing is above and no hall_up is here, it falls through to
	// requests_here(any), which matches the hall_down call, and opens
	// the door with the direction reversed to Down.
	v := vec(4)
	v[2].HallDown = true
	dir, beh := decide(v, 2, domain.DirectionUp)
	assert.Equal(t, domain.DirectionDown, dir)
	assert.Equal(t, domain.BehaviourDoorOpen, beh)
}

func TestDecide_ReversesToDownWhenNothingAbove(t *testing.T) {
	t.Parallel()
	v := vec(4)
	v[0].HallUp = true
	dir, beh := decide(v, 2, domain.DirectionUp)
	assert.Equal(t, domain.DirectionDown, dir)
	assert.Equal(t, domain.BehaviourMoving, beh)
}

func TestShouldStop_StopsForMatchingHallOrCab(t *testing.T) {
	t.Parallel()
	v := vec(4)
	v[2].HallUp = true
	assert.True(t, shouldStop(v, 2, domain.DirectionUp))
	assert.False(t, shouldStop(v, 2, domain.DirectionDown))
}

func TestShouldStop_StopsWhenNothingFurtherInDirection(t *testing.T) {
	t.Parallel()
	v := vec(4)
	assert.True(t, shouldStop(v, 3, domain.DirectionUp))
}

func TestShouldStop_TerminalFloorsNeverFalselyServeWrongDirection(t *testing.T) {
	t.Parallel()
	v := vec(4)
	v[3].HallUp = false // structurally absent at top floor
	assert.True(t, shouldStop(v, 3, domain.DirectionUp))
	v0 := vec(4)
	assert.True(t, shouldStop(v0, 0, domain.DirectionDown))
}
