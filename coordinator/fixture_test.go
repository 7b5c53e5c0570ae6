package coordinator

import "github.com/puctzero/puctzero/game"

// fixtureGameState is a minimal registered game so EnsureNetworksExist
// (which must resolve a game by name to learn its action space) has
// something to look up in these tests; no coordinator test exercises
// actual game rules.
type fixtureGameState struct{}

func (fixtureGameState) ActionSpace() int                   { return 3 }
func (fixtureGameState) Vector() []bool                     { return nil }
func (fixtureGameState) Hash() game.StateKey                { return game.StateKey{} }
func (fixtureGameState) Eq(o game.State) bool                { return false }
func (fixtureGameState) Clone() game.State                  { return fixtureGameState{} }
func (fixtureGameState) IsTerminal() bool                   { return true }
func (fixtureGameState) GoalValue(r game.Role) float32      { return 50 }
func (fixtureGameState) LegalMoves(r game.Role) []int32     { return nil }
func (fixtureGameState) NoopMove(r game.Role) int32         { return 0 }
func (fixtureGameState) Apply(jointMove [2]int32) game.State { return fixtureGameState{} }

func init() {
	game.Register("binary-tree", func() game.State { return fixtureGameState{} })
}
