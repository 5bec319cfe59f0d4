package dispatch

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/slavakukuyev/elevator-fleet/internal/backup"
	"github.com/slavakukuyev/elevator-fleet/internal/domain"
	"github.com/slavakukuyev/elevator-fleet/internal/metrics"
	"github.com/slavakukuyev/elevator-fleet/internal/state"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// masterCommit applies a local, already-authoritative change (this
// node's own elevator, as master) to the replicated SystemState:
// reassign hall calls, bump the iteration, broadcast to every
// connected slave, and persist.
func (n *Node) masterCommit() {
	_, span := n.cfg.Tracer.Start(context.Background(), "dispatch.masterCommit")
	defer span.End()

	n.mu.Lock()
	assignStart := time.Now()
	if err := n.systemState.Assign(n.assign); err != nil {
		n.logger.Error("assignment failed", slog.String("error", err.Error()))
	}
	metrics.ObserveAssignDuration(time.Since(assignStart).Seconds())
	n.systemState.Iteration++
	snap := n.systemState.Clone()
	host := n.host
	n.mu.Unlock()

	metrics.ObserveIteration(snap.Iteration)
	metrics.SetHallRequestsOutstanding(countOutstanding(snap))
	span.SetAttributes(
		attribute.Int64("iteration", snap.Iteration),
		attribute.Int("elevator_count", len(snap.Elevators)),
	)

	if host != nil {
		host.Broadcast(*snap)
	}
	if err := backup.Save(n.cfg.BackupPath, snap); err != nil {
		n.logger.Warn("failed to persist backup", slog.String("error", err.Error()))
	}
}

// onSlaveSnapshot handles the "received SystemState from addr" case of
// the master's loop: copy every elevator entry the snapshot carries,
// except this node's own, in verbatim, merge its observed hall-request
// transitions if its
// iteration counter is exactly one ahead of ours, reassign, bump our
// iteration, broadcast, and persist.
func (n *Node) onSlaveSnapshot(addr net.Addr, incoming state.SystemState) {
	_, span := n.cfg.Tracer.Start(context.Background(), "dispatch.onSlaveSnapshot",
		trace.WithAttributes(attribute.String("peer", addr.String())))
	defer span.End()

	mergeStart := time.Now()
	n.mu.Lock()
	for name, el := range incoming.Elevators {
		if name == n.cfg.Name {
			continue // this node's own car is never overwritten by a peer
		}
		n.systemState.Elevators[name] = el
	}

	if incoming.Iteration-n.systemState.Iteration == 1 {
		for floor := range n.systemState.HallRequests {
			mh := &n.systemState.HallRequests[floor]
			ih := incoming.HallRequests[floor]
			applyHallTransition(&mh.Up, ih.Up)
			applyHallTransition(&mh.Down, ih.Down)
		}
		assignStart := time.Now()
		if err := n.systemState.Assign(n.assign); err != nil {
			n.logger.Error("assignment failed", slog.String("error", err.Error()))
		}
		metrics.ObserveAssignDuration(time.Since(assignStart).Seconds())
	}

	n.systemState.Iteration++
	snap := n.systemState.Clone()
	host := n.host
	n.mu.Unlock()

	metrics.ObserveMergeDuration(time.Since(mergeStart).Seconds())
	metrics.ObserveIteration(snap.Iteration)
	metrics.SetHallRequestsOutstanding(countOutstanding(snap))
	span.SetAttributes(
		attribute.Int64("iteration", snap.Iteration),
		attribute.Int("elevator_count", len(snap.Elevators)),
	)

	n.logger.Debug("merged slave snapshot", slog.String("from", addr.String()), slog.Int64("iteration", snap.Iteration))

	if host != nil {
		host.Broadcast(*snap)
	}
	if err := backup.Save(n.cfg.BackupPath, snap); err != nil {
		n.logger.Warn("failed to persist backup", slog.String("error", err.Error()))
	}
}

// countOutstanding counts hall-call buttons currently Requested or
// Assigned, for the fleet's outstanding-work gauge.
func countOutstanding(snap *state.SystemState) int {
	n := 0
	for _, hr := range snap.HallRequests {
		if hr.Up.Requested {
			n++
		}
		if hr.Down.Requested {
			n++
		}
	}
	return n
}

// applyHallTransition folds one slave-observed hall-button state into
// the master's authoritative copy for the same button:
//   - slave sees it newly Requested, master has it Inactive -> Requested
//   - slave sees it Inactive, master has it Assigned -> Inactive (served)
//   - anything else is left untouched; only the owning elevator's own
//     ElevatorEvent can clear a hall call it has actually served, and
//     only a real button press can first raise one.
func applyHallTransition(master *domain.HallRequestState, slave domain.HallRequestState) {
	switch {
	case slave.Unassigned() && master.Inactive():
		master.Requested = true
	case slave.Inactive() && master.Requested && master.AssignedTo != "":
		*master = domain.HallRequestState{}
	}
}
