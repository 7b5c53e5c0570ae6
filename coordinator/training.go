package coordinator

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/puctzero/puctzero/game"
	"github.com/puctzero/puctzero/internal/runprocs"
	"github.com/puctzero/puctzero/store"
	"github.com/puctzero/puctzero/wire"
)

// postTrainingMaxTime bounds how long run_post_training_cmds are given
// before the coordinator proceeds regardless, per spec.md §5.
const postTrainingMaxTime = 10 * time.Minute

// startTrainingRound snapshots the current generation, writes it, and
// dispatches one or two TrainNNRequests depending on whether the policy
// and score networks differ in size.
func (c *Coordinator) startTrainingRound() {
	if c.trainer == nil {
		log.Fatalf("coordinator: training round required but no trainer is registered")
	}

	c.phase = phaseWriting

	gen := wire.Generation{
		Game:                 c.config.Game,
		WithPolicyGeneration: c.policyGeneration(),
		WithScoreGeneration:  c.scoreGeneration(),
		NumSamples:           c.config.GenerationSize,
		Samples:              append([]wire.Sample(nil), c.accumulated[:c.config.GenerationSize]...),
	}
	c.generation = &gen

	if err := store.WriteGeneration(c.config.StorePath, c.config.CurrentStep, gen); err != nil {
		log.Fatalf("coordinator: write generation: %v", err)
	}

	c.phase = phaseTraining

	nextStep := c.config.CurrentStep + 1
	policyGen := generationName(c.config.GenerationPrefix, "policy", nextStep)
	scoreGen := generationName(c.config.GenerationPrefix, "score", nextStep)

	if c.config.PolicyNetworkSize == c.config.ScoreNetworkSize {
		c.pendingTrainings = 1
		c.sendTrainRequest(c.config.PolicyNetworkSize, []string{policyGen, scoreGen})
		return
	}

	c.pendingTrainings = 2
	c.sendTrainRequest(c.config.PolicyNetworkSize, []string{policyGen})
	c.sendTrainRequest(c.config.ScoreNetworkSize, []string{scoreGen})
}

func (c *Coordinator) sendTrainRequest(networkSize string, targetGenerations []string) {
	req := wire.TrainNNRequest{
		Game:              c.config.Game,
		GenerationPrefix:  c.config.GenerationPrefix,
		StorePath:         c.config.StorePath,
		UsePrevious:       true, // trainer-side hint only, per design note (c)
		NextStep:          c.config.CurrentStep + 1,
		ValidationSplit:   float32(c.config.ValidationSplit),
		BatchSize:         c.config.BatchSize,
		Epochs:            c.config.Epochs,
		MaxSampleCount:    c.config.MaxSampleCount,
		NetworkSize:       networkSize,
		TargetGenerations: targetGenerations,
	}
	if err := c.trainer.Send(req); err != nil {
		log.Printf("coordinator: send train request: %v", err)
	}
}

// afterTraining runs once pendingTrainings reaches zero: run any
// post-training commands (bounded wall clock), then roll the
// generation.
func (c *Coordinator) afterTraining() {
	if len(c.config.RunPostTrainingCmds) == 0 {
		c.rollGeneration()
		return
	}

	c.phase = phasePostCmds
	cmds := append([]string(nil), c.config.RunPostTrainingCmds...)
	go func() {
		runprocs.Run(cmds, postTrainingMaxTime)
		c.events <- eventPostCmdsDone{}
	}()
}

// rollGeneration advances current_step, drops the trained prefix of
// samples, resets every worker session, and atomically saves config.
func (c *Coordinator) rollGeneration() {
	c.phase = phaseRolling
	c.config.CurrentStep++

	if err := c.EnsureNetworksExist(); err != nil {
		log.Fatalf("coordinator: %v", err)
	}

	size := c.config.GenerationSize
	if size > len(c.accumulated) {
		size = len(c.accumulated)
	}
	c.accumulated = append([]wire.Sample(nil), c.accumulated[size:]...)
	c.uniqueStates = append([]game.StateKey(nil), c.uniqueStates[size:]...)
	c.uniqueStateSet = make(map[game.StateKey]struct{}, len(c.uniqueStates))
	for _, k := range c.uniqueStates {
		c.uniqueStateSet[k] = struct{}{}
	}

	if len(c.accumulated) != len(c.uniqueStates) || len(c.uniqueStates) != len(c.uniqueStateSet) {
		log.Fatalf("%+v", errors.New("coordinator: unique-state invariant violated after rollover"))
	}

	for _, sess := range c.workers {
		if sess.kind == wire.KindSelfPlay {
			sess.configured = false
			sess.nextUnseenSampleIndex = 0
		}
	}

	if err := c.config.Save(c.configPath, true); err != nil {
		log.Fatalf("coordinator: save config on rollover: %v", err)
	}

	c.generation = nil
	c.pendingTrainings = 0
	c.phase = phaseIdle
	c.postScheduleSoon()
}
