// Package runprocs runs a list of shell commands with a bounded wall
// clock, then returns regardless of whether they finished — the
// coordinator's post-training hook, generalised from the teacher's own
// os/exec-adjacent archive/upload shelling in cmd/train/main.go.
package runprocs

import (
	"context"
	"log"
	"os/exec"
	"time"
)

// Run executes cmds in order under a single combined deadline of
// maxTime. A command that is still running when the deadline passes is
// killed and the remaining commands are skipped; this is never treated
// as a fatal error by the caller, per spec.md §7 kind 7.
func Run(cmds []string, maxTime time.Duration) {
	if len(cmds) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), maxTime)
	defer cancel()

	for _, line := range cmds {
		if ctx.Err() != nil {
			log.Printf("runprocs: deadline passed, skipping remaining post-training commands")
			return
		}
		cmd := exec.CommandContext(ctx, "sh", "-c", line)
		if out, err := cmd.CombinedOutput(); err != nil {
			log.Printf("runprocs: command %q failed: %v\n%s", line, err, out)
		}
	}
}
