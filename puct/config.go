package puct

// Choose names the strategy used to pick the root's move once the
// playout budget is spent.
type Choose string

// Recognised Choose strategies, per the coordinator's config file.
const (
	ChooseTopVisits   Choose = "choose_top_visits"
	ChooseConverge    Choose = "choose_converge"
	ChooseTemperature Choose = "choose_temperature"
)

// Config holds everything that shapes one PUCT evaluator's behaviour. It
// is serialised verbatim inside the coordinator's config file
// (policy_player_conf / score_player_conf).
type Config struct {
	Name string `json:"name"`

	// playout budget
	PlayoutsPerIteration     int `json:"playouts_per_iteration"`
	PlayoutsPerIterationNoop int `json:"playouts_per_iteration_noop"`

	// root pre-expansion
	ExpandRoot int `json:"expand_root"`

	// Dirichlet exploration noise, root only. Disabled when Alpha < 0.
	DirichletNoiseAlpha float64 `json:"dirichlet_noise_alpha"`
	DirichletNoisePct   float32 `json:"dirichlet_noise_pct"`

	// PUCT constant schedule
	PUCTBeforeExpansions     int     `json:"puct_before_expansions"`
	PUCTBeforeRootExpansions int     `json:"puct_before_root_expansions"`
	PUCTConstantBefore       float32 `json:"puct_constant_before"`
	PUCTConstantAfter        float32 `json:"puct_constant_after"`
	PUCTConstantTune         bool    `json:"puct_constant_tune"`

	// move choice
	Choose                    Choose  `json:"choose"`
	Temperature               float32 `json:"temperature"`
	DepthTemperatureStart     int     `json:"depth_temperature_start"`
	DepthTemperatureIncrement float32 `json:"depth_temperature_increment"`
	DepthTemperatureStop      int     `json:"depth_temperature_stop"`
	RandomScale               float32 `json:"random_scale"`

	// debugging
	MaxDumpDepth int  `json:"max_dump_depth"`
	Verbose      bool `json:"verbose"`

	// Generation is the network identifier stored with this config. The
	// evaluator does not read it; the oracle it is given decides which
	// network answers, and "latest" has no special handling here.
	Generation string `json:"generation"`
}

// DefaultConfig mirrors the teacher's own `configs["default"]` PUCT
// parameters, translated to the two-role formulation.
func DefaultConfig() Config {
	return Config{
		Name:                      "default",
		PlayoutsPerIteration:      800,
		PlayoutsPerIterationNoop:  800,
		ExpandRoot:                0,
		DirichletNoiseAlpha:       -1,
		DirichletNoisePct:         0.25,
		PUCTBeforeExpansions:      3,
		PUCTBeforeRootExpansions:  6,
		PUCTConstantBefore:        3.0,
		PUCTConstantAfter:         0.75,
		Choose:                    ChooseTopVisits,
		Temperature:               1.0,
		DepthTemperatureStart:     4,
		DepthTemperatureIncrement: 0.5,
		DepthTemperatureStop:      8,
		RandomScale:               0.5,
		MaxDumpDepth:              1,
		Generation:                "latest",
	}
}

// IsValid reports whether the config is sane enough to run a search with.
func (c Config) IsValid() bool {
	if c.PlayoutsPerIteration <= 0 {
		return false
	}
	switch c.Choose {
	case ChooseTopVisits, ChooseConverge, ChooseTemperature:
	default:
		return false
	}
	if c.Choose == ChooseTemperature && c.Temperature <= 0 {
		return false
	}
	return true
}
