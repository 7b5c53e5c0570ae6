package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeState struct {
	role0Legal []int32
	role1Legal []int32
}

func (s fakeState) ActionSpace() int                { return 3 }
func (s fakeState) Vector() []bool                  { return nil }
func (s fakeState) Hash() StateKey                  { return StateKey{} }
func (s fakeState) Eq(o State) bool                 { return false }
func (s fakeState) Clone() State                    { return s }
func (s fakeState) IsTerminal() bool                { return false }
func (s fakeState) GoalValue(r Role) float32        { return 0 }
func (s fakeState) NoopMove(r Role) int32 { return 2 }
func (s fakeState) LegalMoves(r Role) []int32 {
	if r == Role0 {
		return s.role0Legal
	}
	return s.role1Legal
}
func (s fakeState) Apply(jointMove [2]int32) State { return s }

func TestLeadRoleRole1IsLead(t *testing.T) {
	s := fakeState{role0Legal: []int32{2}, role1Legal: []int32{0, 1}}
	role, err := LeadRole(s)
	assert.NoError(t, err)
	assert.Equal(t, Role1, role)
}

func TestLeadRoleRole0IsLead(t *testing.T) {
	s := fakeState{role0Legal: []int32{0, 1}, role1Legal: []int32{2}}
	role, err := LeadRole(s)
	assert.NoError(t, err)
	assert.Equal(t, Role0, role)
}

func TestLeadRoleNeitherRoleIsLoneNoop(t *testing.T) {
	s := fakeState{role0Legal: []int32{0, 1}, role1Legal: []int32{0, 1}}
	_, err := LeadRole(s)
	assert.Error(t, err)
}

func TestKeyOfIsDeterministicAndDistinct(t *testing.T) {
	a := KeyOf([]bool{true, false, true})
	b := KeyOf([]bool{true, false, true})
	c := KeyOf([]bool{false, false, true})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestOtherRole(t *testing.T) {
	assert.Equal(t, Role1, OtherRole(Role0))
	assert.Equal(t, Role0, OtherRole(Role1))
}
