package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielbahrami/SE08-SP/dispatch"
	"github.com/danielbahrami/SE08-SP/fsm"
	"github.com/danielbahrami/SE08-SP/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delay = 60 * time.Millisecond

func testTable() *fsm.Table {
	return fsm.NewTable().
		AddTransition(state.Uninitialized, "init", state.Initializing).
		AddTransition(state.Initializing, "ready", state.Locked).
		AddTransition(state.Initializing, "err-wifi", state.Error).
		AddTransition(state.Initializing, "err-mqtt", state.Error).
		AddSimTransition(state.Locked, "open", state.Unlocking, delay, "open-complete").
		AddTransition(state.Locked, "err-command", state.Error).
		AddTransition(state.Unlocking, "open-complete", state.Unlocked).
		AddTransition(state.Unlocking, "open-failure", state.Error).
		AddSimTransition(state.Unlocked, "close", state.Locking, delay, "close-complete").
		AddTransition(state.Locking, "close-complete", state.Locked).
		AddSimTransition(state.Error, "reset", state.Locking, delay, "close-complete")
}

func startLock(t *testing.T, mode Mode) *SmartLock {
	l, err := New(testTable(), Config{Mode: mode, PollPeriod: 5 * time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return l
}

func eventually(t *testing.T, l *SmartLock, expected state.State) {
	t.Helper()
	require.Eventually(t, func() bool { return l.Machine().State() == expected }, 2*time.Second, 2*time.Millisecond,
		"expected %s, got %s", expected, l.Machine().State())
}

func TestInitAndReady(t *testing.T) {
	l := startLock(t, ModeSimulated)

	require.NoError(t, l.Send("init"))
	require.NoError(t, l.Send("ready"))

	eventually(t, l, state.Locked)
	_, active := l.Machine().ErrorCondition()
	assert.False(t, active)
}

func TestOpenCompletesAfterDelay(t *testing.T) {
	l := startLock(t, ModeSimulated)
	require.NoError(t, l.Send("init"))
	require.NoError(t, l.Send("ready"))
	eventually(t, l, state.Locked)

	start := time.Now()
	require.NoError(t, l.Submit("open"))
	eventually(t, l, state.Unlocking)

	eventually(t, l, state.Unlocked)
	assert.GreaterOrEqual(t, time.Since(start), delay)
}

func TestErrorAndReset(t *testing.T) {
	l := startLock(t, ModeSimulated)
	require.NoError(t, l.Send("init"))
	require.NoError(t, l.Send("err-wifi"))
	eventually(t, l, state.Error)

	condition, active := l.Machine().ErrorCondition()
	assert.True(t, active)
	assert.Equal(t, "err-wifi", condition)

	require.NoError(t, l.Submit("reset"))
	eventually(t, l, state.Locking)
	_, active = l.Machine().ErrorCondition()
	assert.False(t, active)

	eventually(t, l, state.Locked)
}

func TestUnknownEventWhileUninitialized(t *testing.T) {
	l := startLock(t, ModeSimulated)

	require.NoError(t, l.Send("foo"))
	require.NoError(t, l.Send("init"))

	eventually(t, l, state.Initializing)
}

func TestUnknownCommandDrivesError(t *testing.T) {
	l := startLock(t, ModeSimulated)
	require.NoError(t, l.Send("init"))
	require.NoError(t, l.Send("ready"))
	eventually(t, l, state.Locked)

	require.NoError(t, l.Submit("jiggle"))

	eventually(t, l, state.Error)
	condition, _ := l.Machine().ErrorCondition()
	assert.Equal(t, "err-command", condition)
}

func TestCommandAliasesAndTableEvents(t *testing.T) {
	l := startLock(t, ModeSimulated)
	require.NoError(t, l.Send("init"))
	require.NoError(t, l.Send("ready"))
	eventually(t, l, state.Locked)

	require.NoError(t, l.Submit(" UNLOCK "))
	eventually(t, l, state.Unlocking)

	// actuator feedback is a table event and passes through unchanged
	require.NoError(t, l.Submit("open-failure"))
	eventually(t, l, state.Error)
	condition, _ := l.Machine().ErrorCondition()
	assert.Equal(t, "open-failure", condition)

	// the pending open-complete arrives late and is ignored
	time.Sleep(2 * delay)
	assert.Equal(t, state.Error, l.Machine().State())
}

func TestEmptyCommandIsDropped(t *testing.T) {
	l, err := New(testTable(), Config{})
	require.NoError(t, err)

	require.NoError(t, l.Submit("  "))
	_, ok := l.dispatcher.TryReceive()
	assert.False(t, ok)
}

func TestInlineMode(t *testing.T) {
	l := startLock(t, ModeInline)
	require.NoError(t, l.Send("init"))
	require.NoError(t, l.Send("ready"))
	eventually(t, l, state.Locked)

	require.NoError(t, l.Submit("open"))
	eventually(t, l, state.Unlocked)
	assert.Nil(t, l.deferred)
}

func TestSendAfterShutdown(t *testing.T) {
	l, err := New(testTable(), Config{PollPeriod: time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l.Run(ctx)

	err = l.Send("init")
	assert.ErrorIs(t, err, dispatch.ErrChannelClosed)
}

func TestShutdownWithPendingFollowUp(t *testing.T) {
	l, err := New(testTable(), Config{PollPeriod: time.Millisecond})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)

	require.NoError(t, l.Send("init"))
	require.NoError(t, l.Send("ready"))
	require.NoError(t, l.Submit("open"))
	eventually(t, l, state.Unlocking)

	cancel()
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("event loop did not stop")
	}

	start := time.Now()
	l.Wait()
	assert.Less(t, time.Since(start), time.Second)

	// the follow-up was dropped, not applied
	assert.Equal(t, state.Unlocking, l.State())
	assert.ErrorIs(t, l.Send("open-complete"), dispatch.ErrChannelClosed)
}

func TestConsume(t *testing.T) {
	l := startLock(t, ModeSimulated)
	require.NoError(t, l.Send("init"))
	require.NoError(t, l.Send("ready"))
	eventually(t, l, state.Locked)

	commands := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		l.Consume(context.Background(), commands)
		close(done)
	}()

	commands <- "open"
	eventually(t, l, state.Unlocked)

	close(commands)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestUnknownMode(t *testing.T) {
	_, err := New(testTable(), Config{Mode: "hydraulic"})
	assert.Error(t, err)

	_, err = ParseMode("hydraulic")
	assert.Error(t, err)

	mode, err := ParseMode("INLINE")
	require.NoError(t, err)
	assert.Equal(t, ModeInline, mode)
}

func TestDecodeCommand(t *testing.T) {
	cases := map[string]Command{
		"open":   CommandOpen,
		"Unlock": CommandOpen,
		"close":  CommandClose,
		"lock":   CommandClose,
		"reset":  CommandReset,
		"":       CommandUnknown,
		"foo":    CommandUnknown,
	}

	for raw, expected := range cases {
		assert.Equal(t, expected, DecodeCommand(raw), raw)
	}
	assert.Equal(t, "err-command", CommandUnknown.Event())
}

type fakeStep struct {
	err    error
	called bool
}

func (f *fakeStep) Up(ctx context.Context) error {
	f.called = true
	return f.err
}

func (f *fakeStep) Open(ctx context.Context) error {
	f.called = true
	return f.err
}

func TestBootstrap(t *testing.T) {
	l := startLock(t, ModeSimulated)

	require.NoError(t, l.Bootstrap(context.Background(), &fakeStep{}, &fakeStep{}))

	eventually(t, l, state.Locked)
}

func TestBootstrapLinkFailure(t *testing.T) {
	l := startLock(t, ModeSimulated)
	transport := &fakeStep{}

	err := l.Bootstrap(context.Background(), &fakeStep{err: errors.New("no carrier")}, transport)

	assert.Error(t, err)
	assert.False(t, transport.called)
	eventually(t, l, state.Error)
	condition, _ := l.Machine().ErrorCondition()
	assert.Equal(t, "err-wifi", condition)
}

func TestBootstrapTransportFailure(t *testing.T) {
	l := startLock(t, ModeSimulated)

	err := l.Bootstrap(context.Background(), &fakeStep{}, &fakeStep{err: errors.New("connection refused")})

	assert.Error(t, err)
	eventually(t, l, state.Error)
	condition, _ := l.Machine().ErrorCondition()
	assert.Equal(t, "err-mqtt", condition)
}
