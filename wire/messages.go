package wire

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/puctzero/puctzero/puct"
)

// WorkerKind identifies what a connected worker has registered as.
type WorkerKind string

const (
	KindUnknown  WorkerKind = "unknown"
	KindSelfPlay WorkerKind = "self-play"
	KindTrainer  WorkerKind = "trainer"
)

// Message type tags. The tag is the message's concrete Go type name,
// carried in Envelope.Type as the side-channel class key a receiver uses
// to pick the right struct to unmarshal the payload into.
const (
	TypePing                   = "Ping"
	TypePong                   = "Pong"
	TypeHello                  = "Hello"
	TypeHelloResponse          = "HelloResponse"
	TypeSelfPlayQuery          = "SelfPlayQuery"
	TypeSelfPlayResponse       = "SelfPlayResponse"
	TypeConfigureApproxTrainer = "ConfigureApproxTrainer"
	TypeOk                     = "Ok"
	TypeRequestSample          = "RequestSample"
	TypeRequestSampleResponse  = "RequestSampleResponse"
	TypeTrainNNRequest         = "TrainNNRequest"
)

// Ping is sent by the coordinator immediately on accept, for round-trip
// time logging.
type Ping struct{}

// Pong is the worker's reply to Ping.
type Pong struct{}

// Hello asks the worker to identify itself.
type Hello struct{}

// HelloResponse carries the worker's declared kind.
type HelloResponse struct {
	Kind WorkerKind `json:"kind"`
}

// SelfPlayQuery asks a self-play worker to confirm it has the named
// networks available. StorePath locates the generation directories
// PolicyGen/ScoreGen name, so the worker can actually load them rather
// than merely echo the identifiers back.
type SelfPlayQuery struct {
	Game      string `json:"game"`
	PolicyGen string `json:"policy_gen"`
	ScoreGen  string `json:"score_gen"`
	StorePath string `json:"store_path"`
}

// SelfPlayResponse confirms the worker is ready to be configured.
type SelfPlayResponse struct{}

// ConfigureApproxTrainer is the coordinator's steady-state configuration
// push: the generations to play against and the PUCT options to use.
type ConfigureApproxTrainer struct {
	Game                 string      `json:"game"`
	PolicyGeneration     string      `json:"policy_generation"`
	ScoreGeneration      string      `json:"score_generation"`
	Temperature          float32     `json:"temperature"`
	PolicyPUCTPlayerConf puct.Config `json:"policy_puct_player_conf"`
	ScorePUCTPlayerConf  puct.Config `json:"score_puct_player_conf"`
}

// Ok is a generic acknowledgement, distinguished by Message.
type Ok struct {
	Message string `json:"message"`
}

// RequestSample asks a configured self-play worker for samples, telling
// it about states already seen elsewhere so it can dedupe locally.
type RequestSample struct {
	NewStates [][]bool `json:"new_states"`
}

// RequestSampleResponse carries one freshly produced sample plus how
// many duplicate states the worker skipped while producing it.
type RequestSampleResponse struct {
	Sample         Sample `json:"sample"`
	DuplicatesSeen int    `json:"duplicates_seen"`
}

// TrainNNRequest asks the trainer to fit one network from the latest
// generation file. TargetGenerations names every generation directory
// the resulting weights must be saved under — more than one entry when
// the policy and score networks share a size and are therefore trained
// together as a single network serving both roles, matching whatever
// Coordinator.policyGeneration/scoreGeneration computed.
type TrainNNRequest struct {
	Game              string   `json:"game"`
	GenerationPrefix  string   `json:"generation_prefix"`
	StorePath         string   `json:"store_path"`
	UsePrevious       bool     `json:"use_previous"`
	NextStep          int      `json:"next_step"`
	ValidationSplit   float32  `json:"validation_split"`
	BatchSize         int      `json:"batch_size"`
	Epochs            int      `json:"epochs"`
	MaxSampleCount    int      `json:"max_sample_count"`
	NetworkSize       string   `json:"network_size"`
	TargetGenerations []string `json:"target_generations"`
}

// Envelope is the tagged-union wrapper every message travels in: one
// websocket frame is one Envelope, Type naming which struct Payload
// unmarshals into.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Encode wraps msg in an Envelope tagged with its message kind.
func Encode(msg interface{}) (Envelope, error) {
	var typ string
	switch msg.(type) {
	case Ping, *Ping:
		typ = TypePing
	case Pong, *Pong:
		typ = TypePong
	case Hello, *Hello:
		typ = TypeHello
	case HelloResponse, *HelloResponse:
		typ = TypeHelloResponse
	case SelfPlayQuery, *SelfPlayQuery:
		typ = TypeSelfPlayQuery
	case SelfPlayResponse, *SelfPlayResponse:
		typ = TypeSelfPlayResponse
	case ConfigureApproxTrainer, *ConfigureApproxTrainer:
		typ = TypeConfigureApproxTrainer
	case Ok, *Ok:
		typ = TypeOk
	case RequestSample, *RequestSample:
		typ = TypeRequestSample
	case RequestSampleResponse, *RequestSampleResponse:
		typ = TypeRequestSampleResponse
	case TrainNNRequest, *TrainNNRequest:
		typ = TypeTrainNNRequest
	default:
		return Envelope{}, errors.Errorf("wire: unknown message type %T", msg)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return Envelope{}, errors.Wrap(err, "wire: encode payload")
	}
	return Envelope{Type: typ, Payload: payload}, nil
}

// Decode unmarshals env's payload into the concrete type named by its
// Type tag, returning it as a pointer value.
func Decode(env Envelope) (interface{}, error) {
	var out interface{}
	switch env.Type {
	case TypePing:
		out = &Ping{}
	case TypePong:
		out = &Pong{}
	case TypeHello:
		out = &Hello{}
	case TypeHelloResponse:
		out = &HelloResponse{}
	case TypeSelfPlayQuery:
		out = &SelfPlayQuery{}
	case TypeSelfPlayResponse:
		out = &SelfPlayResponse{}
	case TypeConfigureApproxTrainer:
		out = &ConfigureApproxTrainer{}
	case TypeOk:
		out = &Ok{}
	case TypeRequestSample:
		out = &RequestSample{}
	case TypeRequestSampleResponse:
		out = &RequestSampleResponse{}
	case TypeTrainNNRequest:
		out = &TrainNNRequest{}
	default:
		return nil, errors.Errorf("wire: unknown envelope type %q", env.Type)
	}

	if err := json.Unmarshal(env.Payload, out); err != nil {
		return nil, errors.Wrapf(err, "wire: decode %s payload", env.Type)
	}
	return out, nil
}
