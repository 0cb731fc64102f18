package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var errRefused = errors.New("connection refused")

// fakeConn is an in-memory Conn. Frames pushed on in are returned by Read.
type fakeConn struct {
	in      chan []byte
	closed  chan struct{}
	once    sync.Once
	mu      sync.Mutex
	written [][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *fakeConn) Read() ([]byte, error) {
	select {
	case b := <-c.in:
		return b, nil
	case <-c.closed:
		return nil, io.EOF
	}
}

func (c *fakeConn) Write(frame []byte) error {
	select {
	case <-c.closed:
		return io.ErrClosedPipe
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, frame)
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.written...)
}

// fakeDialer hands out scripted connections in order, then refuses.
type fakeDialer struct {
	mu     sync.Mutex
	script []*fakeConn // nil entry means refuse
	dials  int
}

func (d *fakeDialer) Dial(ctx context.Context) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.dials
	d.dials++
	if i < len(d.script) && d.script[i] != nil {
		return d.script[i], nil
	}
	return nil, errRefused
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// statusLog records every status an observer sees.
type statusLog struct {
	mu  sync.Mutex
	all []Status
}

func (l *statusLog) record(s Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.all = append(l.all, s)
}

func (l *statusLog) snapshot() []Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Status(nil), l.all...)
}

func waitConnected(t *testing.T, r *Relay) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.WaitConnected(ctx))
}

func TestRelay_DeliversToEverySubscriber(t *testing.T) {
	conn := newFakeConn()
	r := New(&fakeDialer{script: []*fakeConn{conn}}, testLogger, Options{MaxAttempts: 3, Interval: time.Millisecond})

	first := make(chan Message, 4)
	second := make(chan Message, 4)
	other := make(chan Message, 4)
	subFirst := r.On("notification", func(m Message) { first <- m })
	r.On("notification", func(m Message) { second <- m })
	r.On("presence", func(m Message) { other <- m })

	r.Connect(context.Background())
	defer r.Disconnect()
	waitConnected(t, r)

	conn.in <- []byte(`{"type":"notification","kind":"event_request","eventId":"42"}`)

	for _, ch := range []chan Message{first, second} {
		select {
		case m := <-ch:
			assert.Equal(t, "notification", m.Type)
			var payload struct {
				Kind    string `json:"kind"`
				EventID string `json:"eventId"`
			}
			require.NoError(t, m.Decode(&payload))
			assert.Equal(t, "event_request", payload.Kind)
			assert.Equal(t, "42", payload.EventID)
		case <-time.After(time.Second):
			t.Fatal("handler not called")
		}
	}
	assert.Empty(t, other)

	// Unregistering one handler leaves the other in place.
	r.Off(subFirst)
	conn.in <- []byte(`{"type":"notification","kind":"request_accepted"}`)
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("remaining handler not called")
	}
	assert.Empty(t, first)
}

func TestRelay_DropsMalformedFramesAndSurvivesPanics(t *testing.T) {
	conn := newFakeConn()
	r := New(&fakeDialer{script: []*fakeConn{conn}}, testLogger, Options{MaxAttempts: 1, Interval: time.Millisecond})

	got := make(chan Message, 4)
	r.On("notification", func(Message) { panic("boom") })
	r.On("notification", func(m Message) { got <- m })

	r.Connect(context.Background())
	defer r.Disconnect()
	waitConnected(t, r)

	conn.in <- []byte(`not json`)
	conn.in <- []byte(`{"kind":"no type"}`)
	conn.in <- []byte(`{"type":"notification"}`)

	select {
	case m := <-got:
		assert.Equal(t, "notification", m.Type)
	case <-time.After(time.Second):
		t.Fatal("handler not called")
	}
	assert.Equal(t, StateConnected, r.Status().State)
}

func TestRelay_Send(t *testing.T) {
	conn := newFakeConn()
	r := New(&fakeDialer{script: []*fakeConn{conn}}, testLogger, Options{MaxAttempts: 1, Interval: time.Millisecond})

	// Not connected yet: the error is reported, nothing panics.
	require.ErrorIs(t, r.Send("notification", map[string]string{"kind": "event_request"}), ErrNotConnected)

	r.Connect(context.Background())
	defer r.Disconnect()
	waitConnected(t, r)

	require.NoError(t, r.Send("notification", struct {
		Kind    string `json:"kind"`
		EventID string `json:"eventId"`
	}{Kind: "request_accepted", EventID: "42"}))
	require.NoError(t, r.Send("ping", nil))
	require.Error(t, r.Send("notification", []int{1, 2}))

	frames := conn.frames()
	require.Len(t, frames, 2)
	var decoded map[string]string
	require.NoError(t, json.Unmarshal(frames[0], &decoded))
	assert.Equal(t, map[string]string{"type": "notification", "kind": "request_accepted", "eventId": "42"}, decoded)
	assert.JSONEq(t, `{"type":"ping"}`, string(frames[1]))
}

func TestRelay_SendAfterConnectionDropIsSwallowed(t *testing.T) {
	conn := newFakeConn()
	r := New(&fakeDialer{script: []*fakeConn{conn}}, testLogger, Options{MaxAttempts: 5, Interval: time.Hour})
	r.Connect(context.Background())
	defer r.Disconnect()
	waitConnected(t, r)

	conn.Close()
	require.Eventually(t, func() bool { return r.Status().State == StateReconnecting }, time.Second, time.Millisecond)
	assert.Error(t, r.Send("notification", nil))
}

func TestRelay_ReconnectBound(t *testing.T) {
	const max = 3
	dialer := &fakeDialer{}
	r := New(dialer, testLogger, Options{MaxAttempts: max, Interval: time.Millisecond})
	var log statusLog
	r.OnStatus(log.record)

	r.Connect(context.Background())
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not give up")
	}

	statuses := log.snapshot()
	lost := 0
	var attempts []int
	for _, s := range statuses {
		assert.LessOrEqual(t, s.Attempts, max)
		assert.Equal(t, max, s.MaxAttempts)
		if s.State == StateReconnecting {
			attempts = append(attempts, s.Attempts)
		}
		if s.State == StateLost {
			lost++
		}
	}
	assert.Equal(t, []int{1, 2, 3}, attempts)
	assert.Equal(t, 1, lost)
	assert.Equal(t, StateLost, statuses[len(statuses)-1].State)
	assert.Equal(t, max+1, dialer.count())

	final := r.Status()
	assert.Equal(t, "Connection lost. Please restart to reconnect.", final.Message())

	// Lost is terminal: Connect does not restart the loop.
	r.Connect(context.Background())
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, max+1, dialer.count())
	assert.Equal(t, StateLost, r.Status().State)
}

func TestRelay_SuccessfulReconnectResetsCounter(t *testing.T) {
	first := newFakeConn()
	second := newFakeConn()
	dialer := &fakeDialer{script: []*fakeConn{first, nil, second}}
	r := New(dialer, testLogger, Options{MaxAttempts: 3, Interval: time.Millisecond})
	var log statusLog
	r.OnStatus(log.record)

	r.Connect(context.Background())
	defer r.Disconnect()
	waitConnected(t, r)

	first.Close()
	require.Eventually(t, func() bool { return dialer.count() == 3 && r.Status().Connected() }, time.Second, time.Millisecond)
	assert.Equal(t, 0, r.Status().Attempts)

	var sawAttempts []int
	for _, s := range log.snapshot() {
		if s.State == StateReconnecting {
			sawAttempts = append(sawAttempts, s.Attempts)
		}
	}
	assert.Equal(t, []int{1, 2}, sawAttempts)

	// A later loss starts counting from one again.
	second.Close()
	require.Eventually(t, func() bool { return r.Status().State == StateLost }, time.Second, time.Millisecond)
}

func TestRelay_StatusObserversWhileFlapping(t *testing.T) {
	first := newFakeConn()
	dialer := &fakeDialer{script: []*fakeConn{first}}
	r := New(dialer, testLogger, Options{MaxAttempts: 2, Interval: time.Millisecond})

	var early, late statusLog
	var once sync.Once
	r.OnStatus(func(s Status) {
		early.record(s)
		// Registering from inside a callback must not deadlock.
		once.Do(func() { r.OnStatus(late.record) })
	})

	r.Connect(context.Background())
	waitConnected(t, r)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				sub := r.On("notification", func(Message) {})
				_ = r.Send("notification", map[string]string{"message": "hi"})
				_ = r.Status()
				r.Off(sub)
			}
		}()
	}

	first.Close()
	select {
	case <-r.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not give up")
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, Status{State: StateLost, Attempts: 2, MaxAttempts: 2}, r.Status())
	require.NotEmpty(t, late.snapshot())
	assert.Equal(t, StateLost, late.snapshot()[len(late.snapshot())-1].State)
	assert.Equal(t, StateLost, early.snapshot()[len(early.snapshot())-1].State)
}

func TestRelay_Disconnect(t *testing.T) {
	conn := newFakeConn()
	r := New(&fakeDialer{script: []*fakeConn{conn}}, testLogger, Options{MaxAttempts: 3, Interval: time.Millisecond})
	r.Connect(context.Background())
	waitConnected(t, r)

	r.Disconnect()
	assert.Equal(t, StateDisconnected, r.Status().State)
	assert.ErrorIs(t, r.Send("notification", nil), ErrNotConnected)

	// Disconnect twice is harmless.
	r.Disconnect()
}

func TestStatus_Message(t *testing.T) {
	assert.Equal(t, "Reconnecting... Attempt 2 of 5", Status{State: StateReconnecting, Attempts: 2, MaxAttempts: 5}.Message())
	assert.Equal(t, "Connected", Status{State: StateConnected}.Message())
	assert.Equal(t, "Disconnected", Status{}.Message())
}
