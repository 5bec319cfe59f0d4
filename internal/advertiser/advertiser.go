// Package advertiser implements the self-advertising multicast
// discovery mechanism nodes use to find each other and elect a master:
// periodic emission of a locally-unique sender ID plus an application
// payload, filtering out datagrams that echo the advertiser's own ID.
package advertiser

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/slavakukuyev/elevator-fleet/internal/constants"
	"github.com/slavakukuyev/elevator-fleet/internal/socket"
)

// Payload is the application data carried in each advertisement: the
// node's listening TCP port, so a peer can open a connection to it.
type Payload struct {
	Port int `json:"port"`
}

// wireMessage is the on-the-wire datagram: a 16-byte sender id (the
// advertiser's own identity, for self-echo filtering) plus the
// application payload.
type wireMessage struct {
	SenderID string  `json:"senderId"`
	Payload  Payload `json:"payload"`
}

// Peer is one received advertisement, stripped of the sender's own
// identity filtering concerns.
type Peer struct {
	Addr    string
	Payload Payload
}

// Advertiser periodically multicasts this node's presence and
// listening port, and reports advertisements from other nodes. Sending
// can be paused and resumed without tearing down the underlying
// multicast socket, which is needed while a node contests the master
// role.
type Advertiser struct {
	client   *socket.MulticastClient[wireMessage]
	senderID string
	interval time.Duration
	logger   *slog.Logger

	payload chan Payload
	pause   chan bool
	peers   chan Peer
	done    chan struct{}
}

// New joins the multicast group at addr and returns an Advertiser
// ready to Run. The sender ID is a fresh random identifier, used only
// to filter this node's own broadcasts out of its receive stream.
func New(addr string, interval time.Duration, logger *slog.Logger) (*Advertiser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", constants.ComponentAdvertiser))

	client, err := socket.NewMulticastClient[wireMessage](addr, logger)
	if err != nil {
		return nil, err
	}

	return &Advertiser{
		client:   client,
		senderID: uuid.NewString(),
		interval: interval,
		logger:   logger,
		payload:  make(chan Payload, 1),
		pause:    make(chan bool, 1),
		peers:    make(chan Peer, 16),
		done:     make(chan struct{}),
	}, nil
}

// SenderID returns this advertiser's self-identifying ID.
func (a *Advertiser) SenderID() string {
	return a.senderID
}

// SetPayload updates the application payload advertised on every
// subsequent tick.
func (a *Advertiser) SetPayload(p Payload) {
	select {
	case <-a.payload:
	default:
	}
	a.payload <- p
}

// Pause stops outgoing advertisements without releasing the socket, so
// Resume can restart them without rejoining the multicast group.
func (a *Advertiser) Pause() {
	select {
	case a.pause <- true:
	case <-a.done:
	}
}

// Resume restarts outgoing advertisements after Pause.
func (a *Advertiser) Resume() {
	select {
	case a.pause <- false:
	case <-a.done:
	}
}

// Peers returns the channel of advertisements received from other
// nodes, with self-echoes already filtered out.
func (a *Advertiser) Peers() <-chan Peer {
	return a.peers
}

// Run drives the advertiser's send/filter loop until ctx is cancelled.
func (a *Advertiser) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	var current Payload
	paused := false

	for {
		select {
		case <-ctx.Done():
			close(a.done)
			_ = a.client.Close()
			return

		case p := <-a.payload:
			current = p

		case paused = <-a.pause:

		case <-ticker.C:
			if !paused {
				a.client.Send(wireMessage{SenderID: a.senderID, Payload: current})
			}

		case msg := <-a.client.Receive():
			if msg.Value.SenderID == a.senderID {
				continue
			}
			select {
			case a.peers <- Peer{Addr: msg.Addr.String(), Payload: msg.Value.Payload}:
			default:
				a.logger.Warn("dropping advertisement, peers channel full")
			}
		}
	}
}
