// Package store persists the coordinator's config file and per-
// generation sample snapshots, grounded on the teacher's JSON+os/
// ioutil save/load style (agogo.go's SaveAZ/Load) rather than any
// config-file library, extended with the crash-safe rollover this
// system's generation-based config rewrite needs.
package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/puctzero/puctzero/puct"
)

// Config is the coordinator's on-disk config file, covering both the
// process-level fields and the two PUCT player configurations used for
// self-play.
type Config struct {
	Port                   int         `json:"port"`
	Game                   string      `json:"game"`
	CurrentStep            int         `json:"current_step"`
	PolicyNetworkSize      string      `json:"policy_network_size"`
	ScoreNetworkSize       string      `json:"score_network_size"`
	GenerationPrefix       string      `json:"generation_prefix"`
	StorePath              string      `json:"store_path"`
	PolicyPlayerConf       puct.Config `json:"policy_player_conf"`
	ScorePlayerConf        puct.Config `json:"score_player_conf"`
	GenerationSize         int         `json:"generation_size"`
	MaxGrowthWhileTraining float64     `json:"max_growth_while_training"`
	ValidationSplit        float64     `json:"validation_split"`
	BatchSize              int         `json:"batch_size"`
	Epochs                 int         `json:"epochs"`
	MaxSampleCount         int         `json:"max_sample_count"`
	RunPostTrainingCmds    []string    `json:"run_post_training_cmds"`
}

// NetworkSize enumerates the recognised policy_network_size/
// score_network_size values.
const (
	SizeTiny    = "tiny"
	SizeSmaller = "smaller"
	SizeSmall   = "small"
	SizeNormal  = "normal"
)

// Default synthesises a config with sane defaults for a fresh store,
// the values a new coordinator is started with when no config file
// exists yet.
func Default(game, storePath string, port int) Config {
	return Config{
		Port:                   port,
		Game:                   game,
		CurrentStep:            0,
		PolicyNetworkSize:      SizeSmall,
		ScoreNetworkSize:       SizeSmall,
		GenerationPrefix:       "gen",
		StorePath:              storePath,
		PolicyPlayerConf:       puct.DefaultConfig(),
		ScorePlayerConf:        puct.DefaultConfig(),
		GenerationSize:         10000,
		MaxGrowthWhileTraining: 0.2,
		ValidationSplit:        0.1,
		BatchSize:              256,
		Epochs:                 1,
		MaxSampleCount:         0,
	}
}

// IsValid reports whether c is sane enough for the coordinator to run.
func (c Config) IsValid() bool {
	if c.Port <= 0 || c.Game == "" || c.StorePath == "" {
		return false
	}
	if c.GenerationSize <= 0 || c.MaxGrowthWhileTraining < 0 {
		return false
	}
	if c.ValidationSplit <= 0 || c.ValidationSplit >= 1 {
		return false
	}
	return c.PolicyPlayerConf.IsValid() && c.ScorePlayerConf.IsValid()
}

// Load reads and validates the config at path. If the file does not
// exist, it synthesises defaults for game/storePath/port, writes them
// to path, and returns them — mirroring the teacher's own "construct
// then save" flow in agogo.go's New/SaveAZ pair.
func Load(path, game, storePath string, port int) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		conf := Default(game, storePath, port)
		if werr := conf.save(path, "-bak"); werr != nil {
			return Config{}, errors.Wrap(werr, "store: write default config")
		}
		return conf, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(err, "store: read config")
	}

	var conf Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return Config{}, errors.Wrap(err, "store: unmarshal config")
	}
	if !conf.IsValid() {
		return Config{}, errors.Errorf("store: config at %s is invalid", path)
	}
	return conf, nil
}

// Save writes c to path atomically. On a roll save (the rollover that
// advances CurrentStep), the previous primary is preserved at
// "<path>-<step-1>"; otherwise it is preserved at "<path>-bak".
func (c Config) Save(path string, roll bool) error {
	suffix := "-bak"
	if roll {
		suffix = fmt.Sprintf("-%d", c.CurrentStep-1)
	}
	return c.save(path, suffix)
}

func (c Config) save(path, suffix string) error {
	if err := preserveSide(path, path+suffix); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "\t")
	if err != nil {
		return errors.Wrap(err, "store: marshal config")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "store: write temp config")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "store: rename config into place")
	}
	return nil
}

// preserveSide copies primary's current content to sidePath before it
// is overwritten, so a reader of primary only ever sees a syntactically
// complete file even if the process dies mid-save. A missing primary
// (first-ever save) is not an error.
func preserveSide(primary, sidePath string) error {
	src, err := os.Open(primary)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "store: open primary for side copy")
	}
	defer src.Close()

	tmp := sidePath + ".tmp"
	dst, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "store: open side temp file")
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.Wrap(err, "store: copy primary to side file")
	}
	if err := dst.Close(); err != nil {
		return errors.Wrap(err, "store: close side temp file")
	}
	return errors.Wrap(os.Rename(tmp, sidePath), "store: rename side file into place")
}

// GenerationPath returns the write-once path for a generation's sample
// file at the given step.
func GenerationPath(storePath string, step int) string {
	return filepath.Join(storePath, fmt.Sprintf("gendata_%d.json", step))
}
