package oracle

import (
	"encoding/json"
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/puctzero/puctzero/game"
)

// Config shapes a Reference network the way the teacher's dual.Config
// shapes a real one: action space size plus a handful of knobs that
// exist so the file format matches what a real network's metadata would
// carry, even though Reference predicts deterministically rather than
// by inference.
type Config struct {
	ActionSpace int     `json:"action_space"`
	Bias        float32 `json:"bias"`
}

// IsValid mirrors the teacher's dual.Config.IsValid shape.
func (c Config) IsValid() bool {
	return c.ActionSpace >= 1
}

const (
	metaFile = "meta.json"
)

// Reference is a deterministic, dependency-free stand-in for a trained
// policy/value network: its predictions are a stable hash of the state
// vector, not the output of any learning process. It exists so the PUCT
// evaluator, coordinator, and worker protocol can be exercised end to
// end without a real network implementation, and so tests get
// repeatable (same state in, same prediction out) oracle answers.
type Reference struct {
	mu   sync.Mutex
	conf Config
	gen  string
}

var _ Inferencer = (*Reference)(nil)
var _ Trainer = (*Reference)(nil)

// NewReference builds a Reference oracle for the given config.
func NewReference(conf Config) (*Reference, error) {
	if !conf.IsValid() {
		return nil, errors.New("oracle: invalid reference config")
	}
	return &Reference{conf: conf, gen: "reference-0"}, nil
}

// Predict hashes each state to a deterministic policy/value pair.
func (r *Reference) Predict(states []game.State, leadRoles []game.Role) ([]Prediction, error) {
	out := make([]Prediction, len(states))
	for i, s := range states {
		out[i] = r.predictOne(s, leadRoles[i])
	}
	return out, nil
}

func (r *Reference) predictOne(s game.State, lead game.Role) Prediction {
	h := fnv.New64a()
	for _, b := range s.Vector() {
		if b {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	}
	sum := h.Sum64()

	policy := make([]float32, r.conf.ActionSpace)
	legal := s.LegalMoves(lead)
	if len(legal) == 0 {
		return Prediction{Policy: policy, Value: [2]float32{0.5, 0.5}}
	}
	var total float32
	for i, mv := range legal {
		// walk the hash forward per move so sibling moves get distinct,
		// but reproducible, weights
		sum = sum*1099511628211 + uint64(i) + 1
		w := float32(sum%1000) / 1000
		policy[mv] = w
		total += w
	}
	if total == 0 {
		uniform := 1.0 / float32(len(legal))
		for _, mv := range legal {
			policy[mv] = uniform
		}
	} else {
		for _, mv := range legal {
			policy[mv] /= total
		}
	}

	v := float32(sum%1000)/1000*(1-r.conf.Bias) + r.conf.Bias
	return Prediction{Policy: policy, Value: [2]float32{v, 1 - v}}
}

// Train is a no-op beyond bumping the generation identifier: Reference
// has no weights to fit.
func (r *Reference) Train(examples []TrainingExample, generation string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen = generation
	return nil
}

// Save writes the reference config and generation identifier as JSON
// metadata, in the teacher's meta.json-under-a-directory shape.
func (r *Reference) Save(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "oracle: save reference")
	}
	meta := struct {
		Conf Config `json:"conf"`
		Gen  string `json:"gen"`
	}{r.conf, r.gen}

	data, err := json.MarshalIndent(meta, "", "\t")
	if err != nil {
		return errors.Wrap(err, "oracle: marshal reference meta")
	}
	return errors.Wrap(os.WriteFile(filepath.Join(dir, metaFile), data, 0644), "oracle: write reference meta")
}

// Load reads back what Save wrote.
func (r *Reference) Load(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, metaFile))
	if err != nil {
		return errors.Wrap(err, "oracle: load reference meta")
	}
	var meta struct {
		Conf Config `json:"conf"`
		Gen  string `json:"gen"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return errors.Wrap(err, "oracle: unmarshal reference meta")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.conf = meta.Conf
	r.gen = meta.Gen
	return nil
}

// Generation reports the identifier of the weights currently in use.
func (r *Reference) Generation() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}
