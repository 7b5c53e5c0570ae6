package wire

// Sample is one recorded PUCT search outcome: the state it was taken at,
// the resulting visit-count policy over legal actions, and the final
// per-role score estimate used as training signal.
type Sample struct {
	State         []bool            `json:"state"`
	Policy        map[int32]float32 `json:"policy"`
	FinalScore    [2]float32        `json:"final_score"`
	Depth         int               `json:"depth"`
	GameLength    int               `json:"game_length"`
	LeadRoleIndex int8              `json:"lead_role_index"`
}

// Generation is a training-ready snapshot: the first generation_size
// accumulated samples, gathered across many self-play games, plus the
// identifiers of the networks that produced them.
type Generation struct {
	Game                 string   `json:"game"`
	WithPolicyGeneration string   `json:"with_policy_generation"`
	WithScoreGeneration  string   `json:"with_score_generation"`
	NumSamples           int      `json:"num_samples"`
	Samples              []Sample `json:"samples"`
}
