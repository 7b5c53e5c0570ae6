package coordinator

import (
	"github.com/pkg/errors"

	"github.com/puctzero/puctzero/game"
	"github.com/puctzero/puctzero/oracle"
)

// EnsureNetworksExist verifies the policy and score networks for the
// current step are present on disk: at current_step 0 a missing network
// is created fresh (random weights), otherwise a missing network is a
// fatal error. Called both at startup (the crash-recovery path) and
// from rollGeneration once current_step has advanced, the same two
// call sites the original distributed trainer ran this check from.
func (c *Coordinator) EnsureNetworksExist() error {
	state, err := game.New(c.config.Game)
	if err != nil {
		return errors.Wrap(err, "coordinator: ensure networks exist")
	}
	actionSpace := state.ActionSpace()

	for _, gen := range []string{c.policyGeneration(), c.scoreGeneration()} {
		if err := c.ensureNetworkExists(gen, actionSpace); err != nil {
			return err
		}
	}
	return nil
}

func (c *Coordinator) ensureNetworkExists(generation string, actionSpace int) error {
	dir := c.config.StorePath + "/" + generation

	probe, err := oracle.NewReference(oracle.Config{ActionSpace: actionSpace})
	if err != nil {
		return errors.Wrap(err, "coordinator: build reference oracle")
	}
	if err := probe.Load(dir); err == nil {
		return nil
	}

	if c.config.CurrentStep != 0 {
		return errors.Errorf("coordinator: network %q missing and current_step != 0", generation)
	}
	return errors.Wrapf(probe.Save(dir), "coordinator: save fresh network %q", generation)
}
