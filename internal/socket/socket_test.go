package socket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testMsg struct {
	Name string `json:"name"`
	N    int    `json:"n"`
}

func TestTCPHostClient_RoundTrip(t *testing.T) {
	t.Parallel()

	host, err := ListenTCP[testMsg](0, nil)
	require.NoError(t, err)
	defer host.Close()

	client, err := DialTCP[testMsg](host.Addr().String(), time.Second, nil)
	require.NoError(t, err)
	defer client.Close()

	client.Send(testMsg{Name: "hello", N: 1})

	select {
	case msg := <-host.Receive():
		assert.Equal(t, "hello", msg.Value.Name)
		assert.Equal(t, 1, msg.Value.N)
	case <-time.After(2 * time.Second):
		t.Fatal("host never received message")
	}

	require.Eventually(t, func() bool { return len(host.Peers()) == 1 }, time.Second, 10*time.Millisecond)

	peerAddr := host.Peers()[0]
	host.Send(peerAddr, testMsg{Name: "world", N: 2})

	select {
	case msg := <-client.Receive():
		assert.Equal(t, "world", msg.Name)
		assert.Equal(t, 2, msg.N)
	case <-time.After(2 * time.Second):
		t.Fatal("client never received message")
	}
}

func TestTCPHost_BroadcastReachesAllPeers(t *testing.T) {
	t.Parallel()

	host, err := ListenTCP[testMsg](0, nil)
	require.NoError(t, err)
	defer host.Close()

	c1, err := DialTCP[testMsg](host.Addr().String(), time.Second, nil)
	require.NoError(t, err)
	defer c1.Close()
	c2, err := DialTCP[testMsg](host.Addr().String(), time.Second, nil)
	require.NoError(t, err)
	defer c2.Close()

	require.Eventually(t, func() bool { return len(host.Peers()) == 2 }, time.Second, 10*time.Millisecond)

	host.Broadcast(testMsg{Name: "all", N: 9})

	for _, c := range []*TCPClient[testMsg]{c1, c2} {
		select {
		case msg := <-c.Receive():
			assert.Equal(t, "all", msg.Name)
		case <-time.After(2 * time.Second):
			t.Fatal("client never received broadcast")
		}
	}
}

func TestTCPClient_DisconnectClosesDone(t *testing.T) {
	t.Parallel()

	host, err := ListenTCP[testMsg](0, nil)
	require.NoError(t, err)

	client, err := DialTCP[testMsg](host.Addr().String(), time.Second, nil)
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, host.Close())

	select {
	case <-client.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("client did not observe host shutdown")
	}
}
