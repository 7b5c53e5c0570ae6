package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/puctzero/puctzero/puct"
)

// TestEncodeDecodeRoundTrip exercises R1: every message kind must survive
// an Encode/Decode round trip with every field preserved.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		msg  interface{}
	}{
		{"Ping", Ping{}},
		{"Pong", Pong{}},
		{"Hello", Hello{}},
		{"HelloResponse", HelloResponse{Kind: KindTrainer}},
		{"SelfPlayQuery", SelfPlayQuery{Game: "checkers", PolicyGen: "p-1", ScoreGen: "s-1", StorePath: "/tmp/store"}},
		{"SelfPlayResponse", SelfPlayResponse{}},
		{"ConfigureApproxTrainer", ConfigureApproxTrainer{
			Game:                 "checkers",
			PolicyGeneration:     "p-1",
			ScoreGeneration:      "s-1",
			Temperature:          1.5,
			PolicyPUCTPlayerConf: puct.DefaultConfig(),
			ScorePUCTPlayerConf:  puct.DefaultConfig(),
		}},
		{"Ok", Ok{Message: "configured"}},
		{"RequestSample", RequestSample{NewStates: [][]bool{{true, false}, {false, true}}}},
		{"RequestSampleResponse", RequestSampleResponse{
			Sample:         Sample{State: []bool{true}, Policy: map[int32]float32{1: 0.5, 2: 0.5}, FinalScore: [2]float32{1, 0}},
			DuplicatesSeen: 3,
		}},
		{"TrainNNRequest", TrainNNRequest{
			Game: "checkers", GenerationPrefix: "gen", StorePath: "/tmp/store",
			UsePrevious: true, NextStep: 4, ValidationSplit: 0.1,
			BatchSize: 64, Epochs: 3, MaxSampleCount: 1000, NetworkSize: "small",
			TargetGenerations: []string{"gen-policy-4", "gen-score-4"},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env, err := Encode(tc.msg)
			require.NoError(t, err)

			decoded, err := Decode(env)
			require.NoError(t, err)

			// Decode always returns a pointer; compare against a pointer to
			// the original so field-wise equality holds.
			assert.Equal(t, addrOf(tc.msg), decoded)
		})
	}
}

func addrOf(msg interface{}) interface{} {
	switch m := msg.(type) {
	case Ping:
		return &m
	case Pong:
		return &m
	case Hello:
		return &m
	case HelloResponse:
		return &m
	case SelfPlayQuery:
		return &m
	case SelfPlayResponse:
		return &m
	case ConfigureApproxTrainer:
		return &m
	case Ok:
		return &m
	case RequestSample:
		return &m
	case RequestSampleResponse:
		return &m
	case TrainNNRequest:
		return &m
	default:
		panic("addrOf: unhandled message type")
	}
}

func TestDecodeUnknownEnvelopeType(t *testing.T) {
	_, err := Decode(Envelope{Type: "NotAThing", Payload: []byte(`{}`)})
	assert.Error(t, err)
}

func TestEncodeUnknownMessageType(t *testing.T) {
	_, err := Encode(struct{ X int }{X: 1})
	assert.Error(t, err)
}
