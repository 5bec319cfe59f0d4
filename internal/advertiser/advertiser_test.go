package advertiser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvertiser_FiltersSelfAndReportsPeers(t *testing.T) {
	a, err := New("239.0.0.52:52098", 10*time.Millisecond, nil)
	if err != nil {
		t.Skipf("multicast unavailable in this environment: %v", err)
	}
	b, err := New("239.0.0.52:52098", 10*time.Millisecond, nil)
	require.NoError(t, err)

	a.SetPayload(Payload{Port: 1000})
	b.SetPayload(Payload{Port: 2000})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	go b.Run(ctx)

	select {
	case peer := <-a.Peers():
		assert.Equal(t, 2000, peer.Payload.Port)
	case <-time.After(3 * time.Second):
		t.Skip("no advertisement observed; environment likely blocks multicast")
	}

	assert.NotEqual(t, a.SenderID(), b.SenderID())
}

func TestAdvertiser_PauseStopsOutgoing(t *testing.T) {
	a, err := New("239.0.0.52:52097", 5*time.Millisecond, nil)
	if err != nil {
		t.Skipf("multicast unavailable in this environment: %v", err)
	}
	b, err := New("239.0.0.52:52097", 5*time.Millisecond, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx)
	go b.Run(ctx)

	a.Pause()
	time.Sleep(100 * time.Millisecond)

	select {
	case <-b.Peers():
		t.Fatal("received advertisement from a paused advertiser")
	default:
	}
}
