package coordinator

import (
	"fmt"
	"log"

	"github.com/puctzero/puctzero/wire"
)

func (c *Coordinator) handleMessage(conn *wire.Conn, msg interface{}) {
	sess, ok := c.workers[conn]
	if !ok {
		return
	}

	switch m := msg.(type) {
	case *wire.Pong:
		// round-trip observed; nothing to act on.

	case *wire.HelloResponse:
		c.handleHelloResponse(conn, sess, m)

	case *wire.SelfPlayResponse:
		c.configureSelfPlay(conn)

	case *wire.Ok:
		c.handleOk(conn, sess, m)

	case *wire.RequestSampleResponse:
		if m.DuplicatesSeen > 0 {
			log.Printf("coordinator: worker skipped %d duplicate states locally", m.DuplicatesSeen)
		}
		c.ingestSample(conn, sess, m.Sample)

	default:
		log.Printf("coordinator: unexpected message %T from worker", msg)
	}
}

func (c *Coordinator) handleHelloResponse(conn *wire.Conn, sess *workerSession, m *wire.HelloResponse) {
	sess.kind = m.Kind

	if m.Kind == wire.KindTrainer {
		if c.trainer != nil {
			log.Printf("coordinator: duplicate trainer registration, closing newcomer")
			_ = conn.Send(wire.Ok{Message: "rejected: trainer already registered"})
			_ = conn.Close()
			delete(c.workers, conn)
			return
		}
		c.trainer = conn
		return
	}

	_ = conn.Send(wire.SelfPlayQuery{
		Game:      c.config.Game,
		PolicyGen: c.policyGeneration(),
		ScoreGen:  c.scoreGeneration(),
		StorePath: c.config.StorePath,
	})
}

func (c *Coordinator) configureSelfPlay(conn *wire.Conn) {
	sess, ok := c.workers[conn]
	if !ok {
		return
	}
	_ = conn.Send(wire.ConfigureApproxTrainer{
		Game:                 c.config.Game,
		PolicyGeneration:     c.policyGeneration(),
		ScoreGeneration:      c.scoreGeneration(),
		Temperature:          c.config.PolicyPlayerConf.Temperature,
		PolicyPUCTPlayerConf: c.config.PolicyPlayerConf,
		ScorePUCTPlayerConf:  c.config.ScorePlayerConf,
	})
	sess.configured = false
}

func (c *Coordinator) handleOk(conn *wire.Conn, sess *workerSession, m *wire.Ok) {
	switch m.Message {
	case "configured":
		sess.configured = true
		c.postScheduleSoon()
	case "network_trained":
		if conn != c.trainer {
			return
		}
		c.pendingTrainings--
		if c.pendingTrainings <= 0 {
			c.afterTraining()
		}
	default:
		log.Printf("coordinator: unrecognised Ok message %q", m.Message)
	}
}

// policyGeneration/scoreGeneration name the networks the current step's
// config was trained against. There is no spec-mandated format; this
// one is stable and reproducible from config alone.
func (c *Coordinator) policyGeneration() string {
	return generationName(c.config.GenerationPrefix, "policy", c.config.CurrentStep)
}

func (c *Coordinator) scoreGeneration() string {
	return generationName(c.config.GenerationPrefix, "score", c.config.CurrentStep)
}

func generationName(prefix, kind string, step int) string {
	return fmt.Sprintf("%s-%s-%d", prefix, kind, step)
}
