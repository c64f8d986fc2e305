package notifier

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNotifier_SubscribeCancel(t *testing.T) {
	n := New()

	ch, cancel := n.Subscribe()
	require.NotNil(t, ch)
	assert.Equal(t, 1, n.Len())

	cancel()
	assert.Equal(t, 0, n.Len())

	_, open := <-ch
	assert.False(t, open, "cancel closes the channel")

	// A second cancel is a no-op.
	assert.NotPanics(t, cancel)
}

func TestNotifier_Broadcast(t *testing.T) {
	n := New()

	ch1, cancel1 := n.Subscribe()
	ch2, cancel2 := n.Subscribe()
	defer cancel1()
	defer cancel2()

	assert.Equal(t, 2, n.Broadcast())

	for i, ch := range []<-chan struct{}{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(100 * time.Millisecond):
			t.Errorf("listener %d did not receive broadcast", i)
		}
	}
}

func TestNotifier_BroadcastCoalesces(t *testing.T) {
	n := New()
	ch, cancel := n.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		n.Broadcast()
		n.Broadcast()
		n.Broadcast()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Broadcast blocked on a full listener")
	}

	<-ch
	select {
	case <-ch:
		t.Error("pings should be coalesced into one")
	default:
	}
}

func TestNotifier_Concurrent(t *testing.T) {
	n := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, cancel := n.Subscribe()
			n.Broadcast()
			cancel()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, n.Len())
}
