package coordinator

import (
	"log"

	"github.com/puctzero/puctzero/game"
	"github.com/puctzero/puctzero/wire"
)

// wantsMoreSamples reports whether the accumulated buffer is still below
// the generation threshold plus its allowed training-time overshoot.
func (c *Coordinator) wantsMoreSamples() bool {
	limit := float64(c.config.GenerationSize) * (1 + c.config.MaxGrowthWhileTraining)
	return float64(len(c.accumulated)) < limit
}

// scheduleFreeWorkers visits every non-busy self-play worker and either
// (re)configures it or hands it a slice of not-yet-seen states to play
// against, per spec.md's scheduling rule. Workers for which we do not
// want more samples stay parked until capacity frees up.
func (c *Coordinator) scheduleFreeWorkers() {
	for conn, sess := range c.workers {
		if sess.kind != wire.KindSelfPlay || sess.busy {
			continue
		}
		if !sess.configured {
			c.configureSelfPlay(conn)
			continue
		}
		if !c.wantsMoreSamples() {
			continue
		}

		newStates := c.statesSince(sess.nextUnseenSampleIndex)
		sess.nextUnseenSampleIndex = len(c.uniqueStates)
		sess.busy = true
		if err := conn.Send(wire.RequestSample{NewStates: newStates}); err != nil {
			log.Printf("coordinator: request sample: %v", err)
			sess.busy = false
		}
	}

	if c.phase == phaseIdle && len(c.accumulated) >= c.config.GenerationSize {
		c.startTrainingRound()
	}
}

// statesSince renders the unique-state tail starting at idx as raw
// []bool vectors, the wire format for RequestSample.
func (c *Coordinator) statesSince(idx int) [][]bool {
	if idx >= len(c.uniqueStates) {
		return nil
	}
	// the coordinator only keeps dedup keys, not the raw vectors, for
	// states beyond the samples it still holds; reconstruct from
	// accumulated samples, which share the same ordering.
	out := make([][]bool, 0, len(c.accumulated)-idx)
	for i := idx; i < len(c.accumulated); i++ {
		out = append(out, c.accumulated[i].State)
	}
	return out
}

// ingestSample applies the dedup + accumulate rule from spec.md §4.2.
func (c *Coordinator) ingestSample(conn *wire.Conn, sess *workerSession, sample wire.Sample) {
	sess.busy = false

	key := game.KeyOf(sample.State)
	if _, seen := c.uniqueStateSet[key]; seen {
		log.Printf("coordinator: dropping inflight duplicate state")
		c.postScheduleSoon()
		return
	}

	c.accumulated = append(c.accumulated, sample)
	c.uniqueStates = append(c.uniqueStates, key)
	c.uniqueStateSet[key] = struct{}{}

	c.postScheduleSoon()
}
