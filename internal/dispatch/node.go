// Package dispatch implements the role-election, state-replication,
// and durable-backup protocol that turns a set of independent nodes
// into one coordinated elevator fleet: exactly one master merges
// hall-call state and assigns calls to elevators, every other node is
// a slave that owns one elevator and shadows the master's view.
package dispatch

import (
	"context"
	"log/slog"
	"math/rand"
	"net"
	"sync"
	"time"

	"github.com/slavakukuyev/elevator-fleet/internal/advertiser"
	"github.com/slavakukuyev/elevator-fleet/internal/assigner"
	"github.com/slavakukuyev/elevator-fleet/internal/backup"
	"github.com/slavakukuyev/elevator-fleet/internal/constants"
	"github.com/slavakukuyev/elevator-fleet/internal/domain"
	"github.com/slavakukuyev/elevator-fleet/internal/driver"
	"github.com/slavakukuyev/elevator-fleet/internal/fsm"
	"github.com/slavakukuyev/elevator-fleet/internal/metrics"
	"github.com/slavakukuyev/elevator-fleet/internal/socket"
	"github.com/slavakukuyev/elevator-fleet/internal/state"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Role is the two-valued tagged role a node holds at any moment.
type Role int

const (
	RoleMaster Role = iota
	RoleSlave
)

// String renders the role for logging.
func (r Role) String() string {
	if r == RoleMaster {
		return "master"
	}
	return "slave"
}

// Config bundles the tunables a Node needs at construction. Values
// mirror spec.md §6's CLI/env surface.
type Config struct {
	Name                string
	FloorCount          int
	MinFloor            int
	MaxFloor            int
	MulticastAddr       string
	AdvertisingInterval time.Duration
	DialTimeout         time.Duration
	BackoffMin          time.Duration
	BackoffMax          time.Duration
	BackupPath          string
	DoorDuration        time.Duration
	ForceMaster         bool
	ForceSlave          bool

	// Tracer spans masterCommit and onSlaveSnapshot. Nil runs with a
	// noop tracer.
	Tracer trace.Tracer
}

// Node is one running fleet participant: it owns exactly one elevator
// (driven by an FSM), participates in master election, and either
// merges the fleet's replicated state (as master) or shadows it (as
// slave).
type Node struct {
	cfg    Config
	logger *slog.Logger

	drv       driver.Driver
	fsmEngine *fsm.FSM
	assign    assigner.Assigner
	dialGuard *circuitBreaker
	adv       *advertiser.Advertiser

	mu          sync.RWMutex
	role        Role
	systemState *state.SystemState
	localState  domain.ElevatorState
	lastMasterI int64 // last iteration counter observed from the master, for the slave's next send

	host   *socket.TCPHost[state.SystemState]
	client *socket.TCPClient[state.SystemState]
}

// New constructs a Node. The FSM and advertiser are created but not
// started; call Run to start the node.
func New(cfg Config, drv driver.Driver, assign assigner.Assigner, logger *slog.Logger) (*Node, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", constants.ComponentDispatch), slog.String("node", cfg.Name))

	adv, err := advertiser.New(cfg.MulticastAddr, cfg.AdvertisingInterval, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Tracer == nil {
		cfg.Tracer = noop.NewTracerProvider().Tracer("dispatch")
	}

	n := &Node{
		cfg:        cfg,
		logger:     logger,
		drv:        drv,
		fsmEngine:  fsm.New(drv, cfg.FloorCount, cfg.DoorDuration, logger),
		assign:     assign,
		dialGuard:  newCircuitBreaker(constants.DefaultCircuitBreakerMax, constants.DefaultCircuitBreakerResetS, 1),
		adv:        adv,
		localState: domain.NewElevatorState(cfg.FloorCount),
	}
	return n, nil
}

// Role reports the node's current role.
func (n *Node) Role() Role {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.role
}

// Snapshot returns a copy of the node's current view of the fleet's
// SystemState, for the status server to render.
func (n *Node) Snapshot() *state.SystemState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.systemState.Clone()
}

// Run boots the node as master (loading any durable backup), starts
// its FSM, advertiser, and election loop, and blocks until ctx is
// cancelled.
func (n *Node) Run(ctx context.Context) error {
	n.systemState = backup.Load(n.cfg.BackupPath, n.cfg.Name, n.cfg.FloorCount)
	n.systemState.SetLocalElevatorState(n.cfg.Name, n.localState)

	var hostRecv <-chan socket.HostMessage[state.SystemState]
	var clientRecv <-chan state.SystemState
	var clientDone <-chan struct{}

	// Every node starts as master; if another master is already on the
	// network its advertisement drives the immediate Master -> Slave
	// handoff below. ForceSlave only biases that contest (see
	// onPeerAdvertised); it never skips starting a listener, since a
	// node with no peers yet must still be reachable as a master.
	if err := n.becomeMaster(); err != nil {
		return err
	}
	hostRecv = n.host.Receive()

	go n.adv.Run(ctx)
	go n.fsmEngine.Run(ctx)

	for {
		n.mu.RLock()
		role := n.role
		if role == RoleMaster {
			hostRecv = n.host.Receive()
		}
		n.mu.RUnlock()
		if role == RoleMaster {
			clientRecv, clientDone = nil, nil
		} else {
			hostRecv = nil
		}

		select {
		case <-ctx.Done():
			n.shutdown()
			return nil

		case ev := <-n.fsmEngine.Events():
			n.onLocalElevatorEvent(ev)

		case bp := <-n.drv.CallButtons():
			n.onLocalButtonPress(bp)

		case msg := <-hostRecv:
			n.onSlaveSnapshot(msg.Addr, msg.Value)

		case snap, ok := <-clientRecv:
			if ok {
				n.onMasterSnapshot(snap)
			}

		case <-clientDone:
			n.onMasterDisconnected()

		case peer := <-n.adv.Peers():
			if !n.cfg.ForceMaster {
				n.onPeerAdvertised(peer)
			}
		}

		n.mu.RLock()
		if n.role == RoleSlave {
			clientRecv = n.client.Receive()
			clientDone = n.client.Done()
		}
		n.mu.RUnlock()
	}
}

func (n *Node) shutdown() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.host != nil {
		_ = n.host.Close()
	}
	if n.client != nil {
		_ = n.client.Close()
	}
}

func (n *Node) becomeMaster() error {
	host, err := socket.ListenTCP[state.SystemState](0, n.logger)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.role = RoleMaster
	n.host = host
	n.client = nil
	n.mu.Unlock()

	port := host.Addr().(*net.TCPAddr).Port
	n.adv.SetPayload(advertiser.Payload{Port: port})
	n.adv.Resume()
	metrics.SetRole(true)
	metrics.RecordElectionTransition(RoleMaster.String())
	n.logger.Info("elected master", slog.Int("port", port))
	return nil
}

// onPeerAdvertised runs the Master -> Slave election contest: pause
// advertising, back off to break ties, then attempt a reliable
// connection to the peer. Success demotes this node to slave; failure
// resumes advertising as master.
func (n *Node) onPeerAdvertised(peer advertiser.Peer) {
	n.mu.RLock()
	isMaster := n.role == RoleMaster
	n.mu.RUnlock()
	if !isMaster {
		return
	}

	n.adv.Pause()

	if !n.cfg.ForceSlave {
		backoff := n.cfg.BackoffMin + time.Duration(rand.Int63n(int64(n.cfg.BackoffMax-n.cfg.BackoffMin+1)))
		time.Sleep(backoff)
	}

	host, _, err := net.SplitHostPort(peer.Addr)
	if err != nil {
		n.adv.Resume()
		return
	}
	addr := net.JoinHostPort(host, itoaPort(peer.Payload.Port))

	var client *socket.TCPClient[state.SystemState]
	err = n.dialGuard.execute(context.Background(), func() error {
		c, dialErr := socket.DialTCP[state.SystemState](addr, n.cfg.DialTimeout, n.logger)
		if dialErr != nil {
			return dialErr
		}
		client = c
		return nil
	})

	if err != nil {
		n.logger.Debug("failed to become slave, remaining master", slog.String("peer", addr), slog.String("error", err.Error()))
		n.adv.Resume()
		return
	}

	n.mu.Lock()
	oldHost := n.host
	n.role = RoleSlave
	n.client = client
	n.host = nil
	n.mu.Unlock()

	if oldHost != nil {
		_ = oldHost.Close()
	}
	metrics.SetRole(false)
	metrics.RecordElectionTransition(RoleSlave.String())
	n.logger.Info("demoted to slave", slog.String("master", addr))
}

func (n *Node) onMasterDisconnected() {
	n.logger.Warn("lost connection to master, re-electing")
	if err := n.becomeMaster(); err != nil {
		n.logger.Error("failed to take over as master", slog.String("error", err.Error()))
	}
}
