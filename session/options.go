package session

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayout/config"
	"github.com/milk9111/physlayout/physics"
)

func engineOptions(cfg config.Config) physics.EngineOptions {
	return physics.EngineOptions{
		Gravity: cp.Vector{
			X: cfg.Gravity.X * cfg.GravityScale,
			Y: cfg.Gravity.Y * cfg.GravityScale,
		},
		Sleeping:   cfg.Sleeping,
		Iterations: cfg.Simulation.Iterations,
		Step:       cfg.Simulation.Step.Seconds(),
	}
}

func wallSides(cfg config.Config) physics.WallSides {
	return physics.WallSides{
		Top:    cfg.Walls.Top,
		Bottom: cfg.Walls.Bottom,
		Left:   cfg.Walls.Left,
		Right:  cfg.Walls.Right,
	}
}

func bodyOptions(cfg config.Config) physics.BodyOptions {
	return physics.BodyOptions{
		Friction:       cfg.Friction.Friction,
		FrictionAir:    cfg.Friction.FrictionAir,
		DensityEnabled: cfg.Density.Enabled,
		Density:        cfg.Density.Value,
	}
}

func dragOptions(cfg config.Config) physics.DragOptions {
	return physics.DragOptions{
		Stiffness:        cfg.Mouse.Stiffness,
		AngularStiffness: cfg.Mouse.AngularStiffness,
	}
}
