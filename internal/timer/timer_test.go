package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_FiresAfterDuration(t *testing.T) {
	t.Parallel()

	tm := New()
	start := time.Now()
	tm.Start(20 * time.Millisecond)

	select {
	case <-tm.Channel():
		assert.WithinDuration(t, start.Add(20*time.Millisecond), time.Now(), 30*time.Millisecond)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timer did not fire")
	}
}

func TestTimer_TriggerFiresImmediately(t *testing.T) {
	t.Parallel()

	tm := New()
	tm.Start(time.Hour)
	tm.Trigger()

	select {
	case <-tm.Channel():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("trigger did not fire")
	}
}

func TestTimer_RestartCancelsPrevious(t *testing.T) {
	t.Parallel()

	tm := New()
	tm.Start(10 * time.Millisecond)
	tm.Start(50 * time.Millisecond)

	select {
	case <-tm.Channel():
		t.Fatal("received signal from cancelled countdown")
	case <-time.After(30 * time.Millisecond):
	}

	select {
	case <-tm.Channel():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("restarted timer never fired")
	}
}

func TestTimer_Stop(t *testing.T) {
	t.Parallel()

	tm := New()
	tm.Start(20 * time.Millisecond)
	tm.Stop()

	select {
	case <-tm.Channel():
		t.Fatal("stopped timer fired")
	case <-time.After(60 * time.Millisecond):
	}
}
