package socket

import (
	"log/slog"
	"net"
	"sync"

	"github.com/slavakukuyev/elevator-fleet/internal/constants"
)

// MulticastMessage pairs a decoded value with the address it arrived
// from.
type MulticastMessage[T any] struct {
	Addr  *net.UDPAddr
	Value T
}

// MulticastClient binds to a well-known multicast group and port, and
// can both send and receive typed datagrams on it. It is the transport
// the advertiser runs over.
type MulticastClient[T any] struct {
	conn   *net.UDPConn
	group  *net.UDPAddr
	logger *slog.Logger

	sendCh chan T
	recvCh chan MulticastMessage[T]

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewMulticastClient joins the multicast group at addr (e.g.
// "239.0.0.52:52052") and starts its background send/receive workers.
func NewMulticastClient[T any](addr string, logger *slog.Logger) (*MulticastClient[T], error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", constants.ComponentSocket))

	group, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, err
	}

	conn, err := net.ListenMulticastUDP("udp4", nil, group)
	if err != nil {
		return nil, err
	}
	conn.SetReadBuffer(MulticastBufferSize * 4)

	c := &MulticastClient[T]{
		conn:   conn,
		group:  group,
		logger: logger,
		sendCh: make(chan T, 16),
		recvCh: make(chan MulticastMessage[T], 16),
		done:   make(chan struct{}),
	}

	c.wg.Add(2)
	go c.sendLoop()
	go c.recvLoop()
	return c, nil
}

// Send queues value for multicast transmission to the group.
func (c *MulticastClient[T]) Send(value T) {
	select {
	case c.sendCh <- value:
	case <-c.done:
	}
}

// Receive returns the channel of datagrams received from the group,
// tagged with their sender address.
func (c *MulticastClient[T]) Receive() <-chan MulticastMessage[T] {
	return c.recvCh
}

func (c *MulticastClient[T]) sendLoop() {
	defer c.wg.Done()
	dest := &net.UDPAddr{IP: c.group.IP, Port: c.group.Port}
	for {
		select {
		case v, ok := <-c.sendCh:
			if !ok {
				return
			}
			payload, err := encode(v)
			if err != nil {
				c.logger.Error("failed to encode multicast payload", slog.String("error", err.Error()))
				continue
			}
			if _, err := c.conn.WriteToUDP(payload, dest); err != nil {
				c.logger.Warn("multicast send failed", slog.String("error", err.Error()))
			}
		case <-c.done:
			return
		}
	}
}

func (c *MulticastClient[T]) recvLoop() {
	defer c.wg.Done()
	buf := make([]byte, MulticastBufferSize)
	for {
		n, addr, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-c.done:
				return
			default:
				c.logger.Warn("multicast read failed", slog.String("error", err.Error()))
				return
			}
		}
		value, err := decode[T](buf[:n])
		if err != nil {
			c.logger.Warn("discarding malformed multicast datagram", slog.String("error", err.Error()))
			continue
		}
		select {
		case c.recvCh <- MulticastMessage[T]{Addr: addr, Value: value}:
		case <-c.done:
			return
		}
	}
}

// Close performs the two-phase shutdown: stop the sender by closing
// the send channel, unblock the receiver by closing the socket, then
// join both workers.
func (c *MulticastClient[T]) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		close(c.sendCh)
		err = c.conn.Close()
		c.wg.Wait()
	})
	return err
}
