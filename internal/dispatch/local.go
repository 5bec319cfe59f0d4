package dispatch

import (
	"log/slog"

	"github.com/slavakukuyev/elevator-fleet/internal/domain"
	"github.com/slavakukuyev/elevator-fleet/internal/driver"
	"github.com/slavakukuyev/elevator-fleet/internal/fsm"
	"github.com/slavakukuyev/elevator-fleet/internal/state"
)

// onLocalElevatorEvent handles the "local ElevatorEvent" case of the
// per-node loop: the node's own FSM just began moving, opened its
// door, or finished a door cycle. It folds the new ElevatorState into
// the shared SystemState, clears whatever this arrival served, and
// republishes (directly if master, over the wire if slave).
func (n *Node) onLocalElevatorEvent(ev fsm.Event) {
	n.mu.Lock()
	local := n.localState
	local.Behaviour = ev.Behaviour
	local.Direction = ev.Direction
	local.Floor = ev.Floor
	local.CabRequests.Clear(ev.Floor)
	n.localState = local
	n.systemState.SetLocalElevatorState(n.cfg.Name, local)

	if ev.Direction != domain.DirectionDown {
		n.systemState.ClearHall(ev.Floor, true)
	}
	if ev.Direction != domain.DirectionUp {
		n.systemState.ClearHall(ev.Floor, false)
	}

	vec := n.systemState.RequestsForElevator(n.cfg.Name)
	role := n.role
	n.mu.Unlock()

	n.fsmEngine.SetRequests(vec)
	n.syncLights()

	if role == RoleMaster {
		n.masterCommit()
	} else {
		n.sendSnapshotToMaster()
	}
}

// onLocalButtonPress handles a hall or cab button reported by this
// node's own driver.
func (n *Node) onLocalButtonPress(bp driver.ButtonPress) {
	n.mu.Lock()
	var changed bool
	switch bp.Kind {
	case driver.HallUp:
		changed = n.systemState.RequestHall(bp.Floor, true)
	case driver.HallDown:
		changed = n.systemState.RequestHall(bp.Floor, false)
	case driver.Cab:
		local := n.localState
		local.CabRequests.Set(bp.Floor)
		n.localState = local
		n.systemState.SetLocalElevatorState(n.cfg.Name, local)
		changed = true
	}
	vec := n.systemState.RequestsForElevator(n.cfg.Name)
	role := n.role
	n.mu.Unlock()

	if !changed {
		return
	}

	n.fsmEngine.SetRequests(vec)
	n.syncLights()

	if role == RoleMaster {
		n.masterCommit()
	} else {
		n.sendSnapshotToMaster()
	}
}

// onMasterSnapshot adopts a broadcast SystemState received as a slave,
// overlaying this node's own ElevatorState back on top since authority
// over one's own car never leaves the node that drives it.
func (n *Node) onMasterSnapshot(snap state.SystemState) {
	n.mu.Lock()
	incoming := snap
	n.systemState = &incoming
	n.systemState.SetLocalElevatorState(n.cfg.Name, n.localState)
	n.lastMasterI = snap.Iteration
	vec := n.systemState.RequestsForElevator(n.cfg.Name)
	n.mu.Unlock()

	n.fsmEngine.SetRequests(vec)
	n.syncLights()
}

// sendSnapshotToMaster pushes this node's view of its own elevator
// (and whatever hall calls it has observed locally) to the current
// master, tagging it one iteration ahead of the last snapshot the
// master is known to have sent. The master's monotonicity gate
// resolves any reordering or duplication this races against.
func (n *Node) sendSnapshotToMaster() {
	n.mu.RLock()
	client := n.client
	out := n.systemState.Clone()
	out.Iteration = n.lastMasterI + 1
	n.mu.RUnlock()

	if client == nil {
		return
	}
	client.Send(*out)
}

func (n *Node) syncLights() {
	n.mu.RLock()
	snap := n.systemState.Clone()
	localCab := n.localState.CabRequests
	n.mu.RUnlock()

	for floor := range snap.HallRequests {
		if err := n.drv.SetCallButtonLight(floor, driver.HallUp, snap.HallRequests[floor].Up.Requested); err != nil {
			n.logger.Debug("failed to set hall-up light", slog.Int("floor", floor), slog.String("error", err.Error()))
		}
		if err := n.drv.SetCallButtonLight(floor, driver.HallDown, snap.HallRequests[floor].Down.Requested); err != nil {
			n.logger.Debug("failed to set hall-down light", slog.Int("floor", floor), slog.String("error", err.Error()))
		}
	}
	for floor, active := range localCab {
		if err := n.drv.SetCallButtonLight(floor, driver.Cab, active); err != nil {
			n.logger.Debug("failed to set cab light", slog.Int("floor", floor), slog.String("error", err.Error()))
		}
	}
}
