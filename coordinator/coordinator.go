// Package coordinator implements the generation coordinator: it drives
// self-play workers and a trainer worker through repeated rounds of
// sample collection and network retraining. State lives entirely on one
// Coordinator value, mutated only by its single event-loop goroutine —
// the Go rendering of a single-threaded cooperative reactor.
package coordinator

import (
	"context"
	"log"

	"github.com/puctzero/puctzero/game"
	"github.com/puctzero/puctzero/store"
	"github.com/puctzero/puctzero/wire"
)

// Coordinator owns all mutable pipeline state. Every field below is
// touched only from the run loop's goroutine.
type Coordinator struct {
	configPath string
	config     store.Config

	accumulated    []wire.Sample
	uniqueStates   []game.StateKey
	uniqueStateSet map[game.StateKey]struct{}

	workers map[*wire.Conn]*workerSession
	trainer *wire.Conn

	generation       *wire.Generation
	pendingTrainings int
	phase            phase

	events        chan coordinatorEvent
	scheduleQueued bool
}

// New builds a Coordinator for an already-loaded config.
func New(configPath string, conf store.Config) *Coordinator {
	return &Coordinator{
		configPath:     configPath,
		config:         conf,
		uniqueStateSet: make(map[game.StateKey]struct{}),
		workers:        make(map[*wire.Conn]*workerSession),
		events:         make(chan coordinatorEvent, 256),
		phase:          phaseIdle,
	}
}

// coordinatorEvent is the tagged union of things the run loop reacts to.
type coordinatorEvent interface{ isCoordinatorEvent() }

type eventAccept struct{ conn *wire.Conn }
type eventMessage struct {
	conn *wire.Conn
	msg  interface{}
}
type eventClosed struct{ conn *wire.Conn }
type eventScheduleSoon struct{}
type eventPostCmdsDone struct{}

func (eventAccept) isCoordinatorEvent()       {}
func (eventMessage) isCoordinatorEvent()      {}
func (eventClosed) isCoordinatorEvent()       {}
func (eventScheduleSoon) isCoordinatorEvent() {}
func (eventPostCmdsDone) isCoordinatorEvent() {}

// Accept registers a newly accepted connection and starts its read pump.
// Called from the networking goroutine; it only ever posts events.
func (c *Coordinator) Accept(conn *wire.Conn) {
	c.events <- eventAccept{conn: conn}
	go c.readPump(conn)
}

func (c *Coordinator) readPump(conn *wire.Conn) {
	for {
		msg, err := conn.Receive()
		if err != nil {
			c.events <- eventClosed{conn: conn}
			return
		}
		c.events <- eventMessage{conn: conn, msg: msg}
	}
}

// Run drains the event queue until ctx is cancelled. It is the single
// goroutine that ever mutates Coordinator state.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			if err := c.Close(); err != nil {
				log.Printf("coordinator: close on shutdown: %v", err)
			}
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

func (c *Coordinator) handle(ev coordinatorEvent) {
	switch e := ev.(type) {
	case eventAccept:
		c.handleAccept(e.conn)
	case eventMessage:
		c.handleMessage(e.conn, e.msg)
	case eventClosed:
		c.handleClosed(e.conn)
	case eventScheduleSoon:
		c.scheduleQueued = false
		c.scheduleFreeWorkers()
	case eventPostCmdsDone:
		c.rollGeneration()
	}
}

func (c *Coordinator) handleAccept(conn *wire.Conn) {
	c.workers[conn] = newWorkerSession(conn)
	if err := conn.Send(wire.Ping{}); err != nil {
		log.Printf("coordinator: send ping: %v", err)
		return
	}
	if err := conn.Send(wire.Hello{}); err != nil {
		log.Printf("coordinator: send hello: %v", err)
	}
}

func (c *Coordinator) handleClosed(conn *wire.Conn) {
	sess, ok := c.workers[conn]
	if !ok {
		return
	}
	delete(c.workers, conn)
	if c.trainer == conn {
		c.trainer = nil
	}
	log.Printf("coordinator: worker disconnected (kind=%s)", sess.kind)
}

// postScheduleSoon coalesces repeated "schedule free workers" requests
// into a single queued event, mirroring the reactor's callLater(0, ...)
// coalescing behaviour.
func (c *Coordinator) postScheduleSoon() {
	if c.scheduleQueued {
		return
	}
	c.scheduleQueued = true
	select {
	case c.events <- eventScheduleSoon{}:
	default:
		c.scheduleQueued = false
	}
}

