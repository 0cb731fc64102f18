// Package relay keeps a push connection to the backend open and routes the
// named-event messages it carries to registered handlers.
//
// The relay is advisory: REST calls are the source of truth, so a failed send
// is logged and reported to the caller but never retried or queued.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// ErrNotConnected is returned by Send when no connection is open.
var ErrNotConnected = errors.New("push connection is not open")

// Conn is one live push connection. Read blocks until a frame arrives or the
// connection fails; Close unblocks a pending Read.
type Conn interface {
	Read() ([]byte, error)
	Write(frame []byte) error
	Close() error
}

// Dialer opens push connections.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// Message is a decoded push frame.
type Message struct {
	Type string
	// Raw is the whole frame, type field included.
	Raw json.RawMessage
}

// Decode unmarshals the frame into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Raw, v)
}

// Handler receives messages of the event type it was registered for. Handlers
// run on the relay's reader goroutine and must not block.
type Handler func(Message)

// Subscription identifies one registered handler.
type Subscription struct {
	event string
	id    uint64
}

type registration struct {
	id      uint64
	handler Handler
}

// Options configures reconnection.
type Options struct {
	// MaxAttempts is the number of reconnection attempts after a loss before
	// the relay gives up.
	MaxAttempts int
	// Interval is the flat delay between attempts.
	Interval time.Duration
}

// Relay is the client side of the push channel.
type Relay struct {
	dialer      Dialer
	logger      *slog.Logger
	maxAttempts int
	interval    time.Duration

	mu        sync.Mutex
	handlers  map[string][]registration
	nextID    uint64
	observers []func(Status)
	status    Status
	conn      Conn
	ready     chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}

	writeMu sync.Mutex
}

// New returns a disconnected Relay.
func New(dialer Dialer, logger *slog.Logger, opts Options) *Relay {
	if opts.MaxAttempts < 0 {
		opts.MaxAttempts = 0
	}
	if opts.Interval <= 0 {
		opts.Interval = 3 * time.Second
	}
	return &Relay{
		dialer:      dialer,
		logger:      logger,
		maxAttempts: opts.MaxAttempts,
		interval:    opts.Interval,
		handlers:    make(map[string][]registration),
		status:      Status{State: StateDisconnected, MaxAttempts: opts.MaxAttempts},
		ready:       make(chan struct{}),
	}
}

// On registers handler for event and returns its subscription.
func (r *Relay) On(event string, handler Handler) Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.handlers[event] = append(r.handlers[event], registration{id: r.nextID, handler: handler})
	return Subscription{event: event, id: r.nextID}
}

// Off removes exactly the handler behind sub. Other handlers for the same
// event are kept.
func (r *Relay) Off(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	regs := r.handlers[sub.event]
	for i, reg := range regs {
		if reg.id == sub.id {
			r.handlers[sub.event] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(r.handlers[sub.event]) == 0 {
		delete(r.handlers, sub.event)
	}
}

// OnStatus registers an observer of connection status changes.
func (r *Relay) OnStatus(fn func(Status)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, fn)
}

// Status returns the current connection status.
func (r *Relay) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Connect starts the connection loop in the background. It is a no-op while a
// loop started earlier is still running or has ended in StateLost.
func (r *Relay) Connect(ctx context.Context) {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	r.mu.Unlock()

	go func() {
		defer close(done)
		r.run(ctx)
	}()
}

// Disconnect stops the connection loop and waits for it to exit.
func (r *Relay) Disconnect() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when the connection loop exits, either after Disconnect or
// after giving up in StateLost. It is nil before Connect.
func (r *Relay) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// WaitConnected blocks until a connection is open or ctx is done.
func (r *Relay) WaitConnected(ctx context.Context) error {
	r.mu.Lock()
	ready := r.ready
	r.mu.Unlock()
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Send writes {"type": event, ...payload} on the open connection. payload must
// encode to a JSON object or be nil. Failures are logged and returned; callers
// are free to ignore them.
func (r *Relay) Send(event string, payload any) error {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		r.logger.Warn("push message not sent", "type", event, "err", err)
		return err
	}

	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		r.logger.Warn("push message not sent", "type", event, "err", ErrNotConnected)
		return ErrNotConnected
	}

	r.writeMu.Lock()
	err = conn.Write(frame)
	r.writeMu.Unlock()
	if err != nil {
		r.logger.Warn("push message not sent", "type", event, "err", err)
		return fmt.Errorf("write push message: %w", err)
	}
	return nil
}

func (r *Relay) run(ctx context.Context) {
	attempts := 0
	r.setStatus(StateConnecting, 0)
	for {
		conn, err := r.dialer.Dial(ctx)
		if err == nil {
			attempts = 0
			r.attach(conn)
			r.readLoop(ctx, conn)
			r.detach(conn)
		} else if ctx.Err() == nil {
			r.logger.Warn("push connection failed", "attempt", attempts, "err", err)
		}

		if ctx.Err() != nil {
			r.setStatus(StateDisconnected, 0)
			return
		}
		if attempts >= r.maxAttempts {
			r.setStatus(StateLost, attempts)
			r.logger.Error("push connection lost", "attempts", attempts)
			return
		}
		attempts++
		r.setStatus(StateReconnecting, attempts)

		timer := time.NewTimer(r.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			r.setStatus(StateDisconnected, 0)
			return
		case <-timer.C:
		}
	}
}

func (r *Relay) attach(conn Conn) {
	r.mu.Lock()
	r.conn = conn
	close(r.ready)
	r.mu.Unlock()
	r.setStatus(StateConnected, 0)
}

func (r *Relay) detach(conn Conn) {
	_ = conn.Close()
	r.mu.Lock()
	r.conn = nil
	r.ready = make(chan struct{})
	r.mu.Unlock()
}

func (r *Relay) readLoop(ctx context.Context, conn Conn) {
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()
	for {
		frame, err := conn.Read()
		if err != nil {
			r.logger.Debug("push connection closed", "err", err)
			return
		}
		r.dispatch(frame)
	}
}

func (r *Relay) dispatch(frame []byte) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &head); err != nil || head.Type == "" {
		r.logger.Debug("push frame dropped", "err", err)
		return
	}

	r.mu.Lock()
	regs := append([]registration(nil), r.handlers[head.Type]...)
	r.mu.Unlock()

	msg := Message{Type: head.Type, Raw: json.RawMessage(frame)}
	for _, reg := range regs {
		r.deliver(reg.handler, msg)
	}
}

func (r *Relay) deliver(h Handler, msg Message) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("push handler panicked", "type", msg.Type, "panic", p)
		}
	}()
	h(msg)
}

func (r *Relay) setStatus(state State, attempts int) {
	r.mu.Lock()
	r.status = Status{State: state, Attempts: attempts, MaxAttempts: r.maxAttempts}
	st := r.status
	observers := slices.Clone(r.observers)
	r.mu.Unlock()

	r.logger.Debug("push status", "state", st.State, "attempts", st.Attempts)
	for _, fn := range observers {
		fn(st)
	}
}

// EncodeFrame flattens payload next to the message type:
// {"type": event, ...payload}.
func EncodeFrame(event string, payload any) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		if string(raw) != "null" {
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, fmt.Errorf("payload must be a JSON object: %w", err)
			}
		}
	}
	typ, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	return json.Marshal(fields)
}
