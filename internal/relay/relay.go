// Package relay implements the per-connection state machine that carries
// user turns to the generative backend and replies back to the client.
package relay

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ai-chat-relay/backend/internal/chat"
	"github.com/ai-chat-relay/backend/internal/gateway"
	"github.com/ai-chat-relay/backend/internal/model"
)

// State represents the controller's position in its lifecycle.
type State int32

const (
	// StateIdle means no backend request is in flight.
	StateIdle State = iota
	// StateProcessing means a user turn is appended and a backend call is
	// in flight.
	StateProcessing
	// StateClosed is terminal; entered on disconnect.
	StateClosed
)

// Client-facing error texts. Clients display these verbatim and do not
// interpret them programmatically.
const (
	errTextEmptyMessage = "Message must not be empty"
	errTextBackend      = "Failed to process message"
)

// Emitter delivers outbound events to the client that owns this
// controller. Implementations must tolerate emission after the underlying
// channel has closed by dropping the event.
type Emitter interface {
	EmitResponse(text string)
	EmitError(message string)
}

// Config holds per-connection relay configuration.
type Config struct {
	// QueueSize bounds the number of messages waiting behind an in-flight
	// request. Zero means the default of 16.
	QueueSize int

	// OnTurns, if set, is called after each completed exchange with the
	// running per-connection turn counters.
	OnTurns func(userTurns, modelTurns int)
}

const defaultQueueSize = 16

// Controller orchestrates one connection's conversation. Inbound messages
// are queued and drained by a single worker goroutine, which guarantees
// that at most one backend call is in flight per connection and that
// replies are emitted in the order their messages arrived.
type Controller struct {
	sessionID string
	log       *chat.Log
	gen       gateway.Generator
	emitter   Emitter
	onTurns   func(int, int)

	queue  chan string
	state  atomic.Int32
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once

	// Counters are written only by the worker goroutine.
	userTurns  int
	modelTurns int
}

// New creates a controller for one connection and starts its worker.
// The caller must invoke Close when the connection ends.
func New(sessionID string, chatLog *chat.Log, gen gateway.Generator, emitter Emitter, cfg Config) *Controller {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		sessionID: sessionID,
		log:       chatLog,
		gen:       gen,
		emitter:   emitter,
		onTurns:   cfg.OnTurns,
		queue:     make(chan string, queueSize),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go c.run()
	return c
}

// Submit queues an inbound user message for sequential processing.
// It returns model.ErrRelayBusy when the queue is full and
// model.ErrRelayClosed after Close.
func (c *Controller) Submit(text string) error {
	if c.State() == StateClosed {
		return model.ErrRelayClosed
	}

	select {
	case c.queue <- text:
		return nil
	default:
		return model.ErrRelayBusy
	}
}

// Close enters the terminal state and cancels any in-flight backend call.
// A late result from a cancelled call is discarded, never emitted.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		c.cancel()
	})
}

// State returns the controller's current state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Log returns the conversation log owned by this controller's connection.
func (c *Controller) Log() *chat.Log {
	return c.log
}

// Done is closed once the worker goroutine has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) run() {
	defer close(c.done)

	for {
		select {
		case <-c.ctx.Done():
			return
		case text := <-c.queue:
			c.process(text)
		}
	}
}

// process handles one inbound message end to end: validate, append the
// user turn, call the backend, append the reply, emit exactly one
// outbound event.
func (c *Controller) process(text string) {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateProcessing)) {
		// Closed while the message sat in the queue.
		return
	}
	defer c.state.CompareAndSwap(int32(StateProcessing), int32(StateIdle))

	if strings.TrimSpace(text) == "" {
		c.emitter.EmitError(errTextEmptyMessage)
		return
	}

	if err := c.log.AppendUser(text); err != nil {
		c.emitter.EmitError(errTextEmptyMessage)
		return
	}
	c.userTurns++

	reply, err := c.gen.Generate(c.ctx, c.log.Turns())
	if c.ctx.Err() != nil {
		// Disconnected while the call was in flight; discard the result.
		return
	}
	if err != nil {
		// The user turn stays in the log with no model turn after it,
		// marking an exchange that got no reply. The controller returns
		// to idle so the next message proceeds normally.
		log.Printf("session %s: backend call failed: %v", c.sessionID, err)
		c.notifyTurns()
		c.emitter.EmitError(errTextBackend)
		return
	}

	if err := c.log.AppendModel(reply); err != nil {
		log.Printf("session %s: dropping unusable reply: %v", c.sessionID, err)
		c.notifyTurns()
		c.emitter.EmitError(errTextBackend)
		return
	}
	c.modelTurns++

	c.notifyTurns()
	c.emitter.EmitResponse(reply)
}

func (c *Controller) notifyTurns() {
	if c.onTurns != nil {
		c.onTurns(c.userTurns, c.modelTurns)
	}
}
