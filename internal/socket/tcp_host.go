package socket

import (
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/slavakukuyev/elevator-fleet/internal/constants"
)

// HostMessage pairs a decoded value with the address of the peer it
// arrived from, for TCPHost's fan-in receive channel.
type HostMessage[T any] struct {
	Addr  net.Addr
	Value T
}

// HostSend addresses an outbound value at one connected peer, for
// TCPHost's fan-out send channel.
type HostSend[T any] struct {
	Addr  net.Addr
	Value T
}

// TCPHost listens for inbound connections and spawns a per-connection
// worker pair for each. It exposes a single fan-in Receive channel
// tagged by peer address and a single fan-out Send channel addressed
// by peer, mirroring an arena-of-peers rather than owning references
// to each connection directly.
type TCPHost[T any] struct {
	listener net.Listener
	logger   *slog.Logger

	peersMu sync.Mutex
	peers   map[string]*TCPClient[T]

	recvCh chan HostMessage[T]
	sendCh chan HostSend[T]

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// ListenTCP binds port (0 = ephemeral) and starts the host's accept
// loop and fan-out dispatcher.
func ListenTCP[T any](port int, logger *slog.Logger) (*TCPHost[T], error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", constants.ComponentSocket))

	ln, err := net.Listen("tcp", portAddr(port))
	if err != nil {
		return nil, err
	}

	h := &TCPHost[T]{
		listener: ln,
		logger:   logger,
		peers:    make(map[string]*TCPClient[T]),
		recvCh:   make(chan HostMessage[T], 64),
		sendCh:   make(chan HostSend[T], 64),
		done:     make(chan struct{}),
	}

	h.wg.Add(2)
	go h.acceptLoop()
	go h.dispatchLoop()
	return h, nil
}

func portAddr(port int) string {
	if port <= 0 {
		return ":0"
	}
	return ":" + strconv.Itoa(port)
}

// Addr returns the address the host is listening on, including the
// concrete port chosen when ListenTCP was called with 0.
func (h *TCPHost[T]) Addr() net.Addr {
	return h.listener.Addr()
}

// Receive returns the fan-in channel of values received from any
// connected peer, tagged with the sending peer's address.
func (h *TCPHost[T]) Receive() <-chan HostMessage[T] {
	return h.recvCh
}

// Send queues value for delivery to the peer at addr.
func (h *TCPHost[T]) Send(addr net.Addr, value T) {
	select {
	case h.sendCh <- HostSend[T]{Addr: addr, Value: value}:
	case <-h.done:
	}
}

// Broadcast queues value for delivery to every currently connected
// peer.
func (h *TCPHost[T]) Broadcast(value T) {
	h.peersMu.Lock()
	defer h.peersMu.Unlock()
	for _, peer := range h.peers {
		peer.Send(value)
	}
}

// Peers returns the addresses of currently connected peers.
func (h *TCPHost[T]) Peers() []net.Addr {
	h.peersMu.Lock()
	defer h.peersMu.Unlock()
	out := make([]net.Addr, 0, len(h.peers))
	for _, peer := range h.peers {
		out = append(out, peer.RemoteAddr())
	}
	return out
}

func (h *TCPHost[T]) acceptLoop() {
	defer h.wg.Done()
	for {
		conn, err := h.listener.Accept()
		if err != nil {
			select {
			case <-h.done:
				return
			default:
				h.logger.Warn("accept failed", slog.String("error", err.Error()))
				return
			}
		}
		peer := newTCPClient[T](conn, h.logger)
		key := peer.RemoteAddr().String()

		h.peersMu.Lock()
		h.peers[key] = peer
		h.peersMu.Unlock()

		h.wg.Add(1)
		go h.serveWorker(key, peer)
	}
}

func (h *TCPHost[T]) serveWorker(key string, peer *TCPClient[T]) {
	defer h.wg.Done()
	defer func() {
		h.peersMu.Lock()
		delete(h.peers, key)
		h.peersMu.Unlock()
		_ = peer.Close()
	}()

	for {
		select {
		case v, ok := <-peer.Receive():
			if !ok {
				return
			}
			select {
			case h.recvCh <- HostMessage[T]{Addr: peer.RemoteAddr(), Value: v}:
			case <-h.done:
				return
			}
		case <-peer.Done():
			return
		case <-h.done:
			return
		}
	}
}

func (h *TCPHost[T]) dispatchLoop() {
	defer h.wg.Done()
	for {
		select {
		case out := <-h.sendCh:
			h.peersMu.Lock()
			peer, ok := h.peers[out.Addr.String()]
			h.peersMu.Unlock()
			if ok {
				peer.Send(out.Value)
			}
		case <-h.done:
			return
		}
	}
}

// Close shuts down the listening socket and joins the accept loop,
// dispatch loop, and every per-connection worker.
func (h *TCPHost[T]) Close() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.done)
		err = h.listener.Close()

		h.peersMu.Lock()
		for _, peer := range h.peers {
			_ = peer.Close()
		}
		h.peersMu.Unlock()

		h.wg.Wait()
	})
	return err
}
