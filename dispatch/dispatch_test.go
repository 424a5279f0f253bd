package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryReceiveEmpty(t *testing.T) {
	d := New()

	_, ok := d.TryReceive()
	assert.False(t, ok)
}

func TestFifoPerSender(t *testing.T) {
	d := New()

	for _, e := range []string{"init", "ready", "open"} {
		require.NoError(t, d.Send(e))
	}

	for _, expected := range []string{"init", "ready", "open"} {
		e, ok := d.TryReceive()
		require.True(t, ok)
		assert.Equal(t, expected, e)
	}
	assert.Equal(t, 0, d.Len())
}

func TestSendAfterClose(t *testing.T) {
	d := New()
	require.NoError(t, d.Send("init"))

	d.Close()

	assert.ErrorIs(t, d.Send("ready"), ErrChannelClosed)
	_, ok := d.TryReceive()
	assert.False(t, ok)
}

func TestConcurrentSenders(t *testing.T) {
	d := New()
	senders := 8
	perSender := 100

	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				_ = d.Send(fmt.Sprintf("%d-%d", s, i))
			}
		}(s)
	}
	wg.Wait()

	last := make(map[int]int)
	for s := 0; s < senders; s++ {
		last[s] = -1
	}
	count := 0
	for {
		e, ok := d.TryReceive()
		if !ok {
			break
		}
		var s, i int
		_, err := fmt.Sscanf(e, "%d-%d", &s, &i)
		require.NoError(t, err)
		assert.Greater(t, i, last[s], "sender %d out of order", s)
		last[s] = i
		count++
	}
	assert.Equal(t, senders*perSender, count)
}

func TestDeferredDeliversOnce(t *testing.T) {
	d := New()
	deferred := NewDeferred(d)

	start := time.Now()
	deferred.Schedule(context.Background(), 30*time.Millisecond, "open-complete")

	_, ok := d.TryReceive()
	assert.False(t, ok, "follow-up delivered before its delay")

	deferred.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	e, ok := d.TryReceive()
	require.True(t, ok)
	assert.Equal(t, "open-complete", e)

	_, ok = d.TryReceive()
	assert.False(t, ok)
}

func TestDeferredIntoClosedDispatcher(t *testing.T) {
	d := New()
	deferred := NewDeferred(d)

	deferred.Schedule(context.Background(), 10*time.Millisecond, "close-complete")
	d.Close()

	assert.NotPanics(t, deferred.Wait)
}
