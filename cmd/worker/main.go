// Command worker connects to a coordinator and acts as either a
// self-play worker (producing samples by running PUCT against itself)
// or the trainer (fitting a network from each generation file), per the
// -kind flag.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/puctzero/puctzero/game"
	"github.com/puctzero/puctzero/oracle"
	"github.com/puctzero/puctzero/puct"
	"github.com/puctzero/puctzero/selfplay"
	"github.com/puctzero/puctzero/store"
	"github.com/puctzero/puctzero/wire"
)

var (
	addr          = flag.String("addr", "ws://localhost:4000/ws", "coordinator websocket address")
	kindFlag      = flag.String("kind", "", "self-play or trainer; defaults to self-play")
	perMoveBudget = flag.Duration("per_move_budget", 2*time.Second, "search deadline per move during self-play")
	maxDedupeTries = 20
)

func main() {
	flag.Parse()
	log.SetFlags(log.Ltime)

	kind := wire.KindSelfPlay
	if *kindFlag == "trainer" {
		kind = wire.KindTrainer
	}

	ws, _, err := websocket.DefaultDialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("worker: dial %s: %v", *addr, err)
	}
	conn := wire.NewConn(ws)
	defer conn.Close()

	if err := handshake(conn, kind); err != nil {
		log.Fatalf("worker: handshake: %v", err)
	}

	switch kind {
	case wire.KindTrainer:
		runTrainer(conn)
	default:
		runSelfPlay(conn)
	}
}

func handshake(conn *wire.Conn, kind wire.WorkerKind) error {
	for i := 0; i < 2; i++ {
		msg, err := conn.Receive()
		if err != nil {
			return err
		}
		switch msg.(type) {
		case *wire.Ping:
			if err := conn.Send(wire.Pong{}); err != nil {
				return err
			}
		case *wire.Hello:
			if err := conn.Send(wire.HelloResponse{Kind: kind}); err != nil {
				return err
			}
		}
	}
	return nil
}

func runSelfPlay(conn *wire.Conn) {
	msg, err := conn.Receive()
	if err != nil {
		log.Fatalf("worker: receive self-play query: %v", err)
	}
	query, ok := msg.(*wire.SelfPlayQuery)
	if !ok {
		log.Fatalf("worker: expected SelfPlayQuery, got %T", msg)
	}

	initial, err := game.New(query.Game)
	if err != nil {
		log.Fatalf("worker: %v", err)
	}

	inf, err := loadNetwork(query.StorePath, query.PolicyGen, initial.ActionSpace())
	if err != nil {
		log.Fatalf("worker: policy network %q not available: %v", query.PolicyGen, err)
	}
	if _, err := loadNetwork(query.StorePath, query.ScoreGen, initial.ActionSpace()); err != nil {
		log.Fatalf("worker: score network %q not available: %v", query.ScoreGen, err)
	}

	if err := conn.Send(wire.SelfPlayResponse{}); err != nil {
		log.Fatalf("worker: send self-play response: %v", err)
	}

	msg, err = conn.Receive()
	if err != nil {
		log.Fatalf("worker: receive configure: %v", err)
	}
	conf, ok := msg.(*wire.ConfigureApproxTrainer)
	if !ok {
		log.Fatalf("worker: expected ConfigureApproxTrainer, got %T", msg)
	}
	if err := conn.Send(wire.Ok{Message: "configured"}); err != nil {
		log.Fatalf("worker: ack configure: %v", err)
	}

	seen := make(map[game.StateKey]struct{})

	for {
		msg, err := conn.Receive()
		if err != nil {
			log.Fatalf("worker: receive request: %v", err)
		}
		req, ok := msg.(*wire.RequestSample)
		if !ok {
			log.Fatalf("worker: expected RequestSample, got %T", msg)
		}
		for _, s := range req.NewStates {
			seen[game.KeyOf(s)] = struct{}{}
		}

		sample, duplicates, err := playUntilNovel(initial, conf.PolicyPUCTPlayerConf, inf, seen)
		if err != nil {
			log.Fatalf("worker: self-play: %v", err)
		}
		if err := conn.Send(wire.RequestSampleResponse{Sample: sample, DuplicatesSeen: duplicates}); err != nil {
			log.Fatalf("worker: send sample: %v", err)
		}
	}
}

// loadNetwork confirms generation is actually present on disk under
// storePath before the worker acks a SelfPlayQuery, per the "worker must
// confirm it has those networks available" handshake requirement.
func loadNetwork(storePath, generation string, actionSpace int) (*oracle.Reference, error) {
	ref, err := oracle.NewReference(oracle.Config{ActionSpace: actionSpace})
	if err != nil {
		return nil, err
	}
	if err := ref.Load(storePath + "/" + generation); err != nil {
		return nil, err
	}
	return ref, nil
}

// playUntilNovel runs episodes until it finds a sample whose state has
// not already been seen by the coordinator or this worker, up to
// maxDedupeTries attempts (a worker that can never find a fresh state
// for a near-exhausted game tree should not spin forever).
func playUntilNovel(initial game.State, conf puct.Config, inf oracle.Inferencer, seen map[game.StateKey]struct{}) (wire.Sample, int, error) {
	duplicates := 0
	for attempt := 0; attempt < maxDedupeTries; attempt++ {
		samples, err := selfplay.Play(initial.Clone(), conf, inf, *perMoveBudget)
		if err != nil {
			return wire.Sample{}, duplicates, err
		}
		for _, s := range samples {
			key := game.KeyOf(s.State)
			if _, dup := seen[key]; dup {
				duplicates++
				continue
			}
			seen[key] = struct{}{}
			return s, duplicates, nil
		}
	}
	return wire.Sample{}, duplicates, errors.New("worker: exhausted attempts producing a novel state")
}

func runTrainer(conn *wire.Conn) {
	for {
		msg, err := conn.Receive()
		if err != nil {
			log.Fatalf("worker: receive train request: %v", err)
		}
		req, ok := msg.(*wire.TrainNNRequest)
		if !ok {
			log.Fatalf("worker: expected TrainNNRequest, got %T", msg)
		}

		gen, err := store.ReadGeneration(req.StorePath, req.NextStep-1)
		if err != nil {
			log.Fatalf("worker: read generation: %v", err)
		}

		examples := make([]oracle.TrainingExample, len(gen.Samples))
		for i, s := range gen.Samples {
			examples[i] = oracle.TrainingExample{State: s.State, Policy: s.Policy, Value: s.FinalScore}
		}

		trainer, err := oracle.NewReference(oracle.Config{ActionSpace: actionSpaceOf(gen)})
		if err != nil {
			log.Fatalf("worker: build trainer: %v", err)
		}
		if err := trainer.Train(examples, req.TargetGenerations[0]); err != nil {
			log.Fatalf("worker: train: %v", err)
		}
		for _, generation := range req.TargetGenerations {
			if err := trainer.Save(req.StorePath + "/" + generation); err != nil {
				log.Fatalf("worker: save %s: %v", generation, err)
			}
		}

		if err := conn.Send(wire.Ok{Message: "network_trained"}); err != nil {
			log.Fatalf("worker: ack train: %v", err)
		}
	}
}

func actionSpaceOf(gen wire.Generation) int {
	max := 0
	for _, s := range gen.Samples {
		for mv := range s.Policy {
			if int(mv)+1 > max {
				max = int(mv) + 1
			}
		}
	}
	return max
}
