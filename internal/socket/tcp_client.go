package socket

import (
	"bufio"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/slavakukuyev/elevator-fleet/internal/constants"
)

// TCPClient is a reliable point-to-point connection to one remote
// host. It exposes a send channel and a receive channel, each backed
// by its own goroutine, and speaks newline-delimited JSON frames.
type TCPClient[T any] struct {
	conn   net.Conn
	logger *slog.Logger

	sendCh chan T
	recvCh chan T

	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// DialTCP connects to addr and starts the client's send/receive
// workers.
func DialTCP[T any](addr string, timeout time.Duration, logger *slog.Logger) (*TCPClient[T], error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}
	return newTCPClient[T](conn, logger), nil
}

func newTCPClient[T any](conn net.Conn, logger *slog.Logger) *TCPClient[T] {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", constants.ComponentSocket), slog.String("peer", conn.RemoteAddr().String()))

	c := &TCPClient[T]{
		conn:   conn,
		logger: logger,
		sendCh: make(chan T, 32),
		recvCh: make(chan T, 32),
		done:   make(chan struct{}),
	}
	c.wg.Add(2)
	go c.sendLoop()
	go c.recvLoop()
	return c
}

// RemoteAddr returns the address of the connected peer.
func (c *TCPClient[T]) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send queues value for transmission to the peer.
func (c *TCPClient[T]) Send(value T) {
	select {
	case c.sendCh <- value:
	case <-c.done:
	}
}

// Receive returns the channel of values decoded from the peer's
// stream, in FIFO order.
func (c *TCPClient[T]) Receive() <-chan T {
	return c.recvCh
}

// Done returns a channel that is closed once the connection has been
// torn down, either by Close or by a read/write failure.
func (c *TCPClient[T]) Done() <-chan struct{} {
	return c.done
}

func (c *TCPClient[T]) sendLoop() {
	defer c.wg.Done()
	for {
		select {
		case v, ok := <-c.sendCh:
			if !ok {
				return
			}
			payload, err := encode(v)
			if err != nil {
				c.logger.Error("failed to encode frame", slog.String("error", err.Error()))
				continue
			}
			if _, err := c.conn.Write(payload); err != nil {
				c.logger.Warn("write failed, closing connection", slog.String("error", err.Error()))
				c.teardown()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *TCPClient[T]) recvLoop() {
	defer c.wg.Done()
	reader := bufio.NewReader(c.conn)
	for {
		line, err := readLine(reader)
		if err != nil {
			c.teardown()
			return
		}
		value, err := decode[T](line)
		if err != nil {
			c.logger.Warn("malformed frame, closing connection", slog.String("error", err.Error()))
			c.teardown()
			return
		}
		select {
		case c.recvCh <- value:
		case <-c.done:
			return
		}
	}
}

func (c *TCPClient[T]) teardown() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Close performs the two-phase shutdown: stop the sender, shut down
// the socket to unblock the receiver, then join both workers.
func (c *TCPClient[T]) Close() error {
	c.teardown()
	c.wg.Wait()
	return nil
}
