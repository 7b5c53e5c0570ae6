package coordinator

import (
	"time"

	"github.com/puctzero/puctzero/wire"
)

// phase names the coordinator's generation-rollover state machine.
type phase int

const (
	phaseIdle phase = iota
	phaseWriting
	phaseTraining
	phasePostCmds
	phaseRolling
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "IDLE"
	case phaseWriting:
		return "WRITING"
	case phaseTraining:
		return "TRAINING"
	case phasePostCmds:
		return "POST_CMDS"
	case phaseRolling:
		return "ROLLING"
	default:
		return "UNKNOWN"
	}
}

// workerSession is the transient per-connection record the coordinator
// keeps for every connected worker.
type workerSession struct {
	conn *wire.Conn

	createdAt             time.Time
	kind                  wire.WorkerKind
	configured            bool
	nextUnseenSampleIndex int
	valid                 bool
	busy                  bool
}

func newWorkerSession(conn *wire.Conn) *workerSession {
	return &workerSession{
		conn:      conn,
		createdAt: time.Now(),
		kind:      wire.KindUnknown,
		valid:     true,
	}
}
