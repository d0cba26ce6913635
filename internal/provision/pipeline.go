package provision

import (
	"fmt"
	"time"
)

// Phase is one step of provisioning
type Phase interface {
	Name() string
	Provision(ctx *Context) error
}

// DefaultPhases returns the phases in the order they must run
func DefaultPhases() []Phase {
	return []Phase{
		environmentPhase{},
		networkPhase{},
		machinePhase{},
		connectPhase{},
		routerPhase{},
	}
}

// RunPhases executes phases sequentially and stops at the first error
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()

	for i, phase := range phases {
		phaseStart := time.Now()
		log := ctx.Log.With().Str("phase", phase.Name()).Int("step", i+1).Int("of", len(phases)).Logger()
		log.Debug().Msg("phase starting")

		if err := phase.Provision(ctx); err != nil {
			log.Error().Err(err).Msg("phase failed")
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		log.Debug().Dur("elapsed", time.Since(phaseStart).Round(time.Millisecond)).Msg("phase completed")
	}

	ctx.Log.Info().
		Dur("elapsed", time.Since(start).Round(time.Millisecond)).
		Int("networks", ctx.State.Networks).
		Int("machines", ctx.State.Machines).
		Int("skipped", ctx.State.Skipped).
		Msg("provisioning completed")
	return nil
}
