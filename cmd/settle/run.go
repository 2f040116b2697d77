package main

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayout/config"
	"github.com/milk9111/physlayout/physics"
	"github.com/milk9111/physlayout/session"
	"go.uber.org/zap"
)

// settledSpeed is the fastest a body may move, in px/s, and still count as
// at rest.
const settledSpeed = 1.0

type runOptions struct {
	Width, Height float64
	// Elements > 0 replaces the config's element sets with that many
	// random boxes.
	Elements int
	Duration time.Duration
}

type sample struct {
	MeanY    float64
	MaxSpeed float64
}

type report struct {
	Session   string
	Set       string
	Frames    int
	Stats     session.Stats
	Final     []physics.Transform
	Labels    []string
	Samples   []sample
	SettledAt int // first frame after which every body stayed below settledSpeed, -1 if never
}

func (r report) Settled() bool { return r.SettledAt >= 0 }

// randomElements makes n boxes between 20 and 120 px on each side.
func randomElements(n int, rng *rand.Rand) config.ElementSet {
	set := config.ElementSet{Name: fmt.Sprintf("random-%d", n)}
	for i := range n {
		set.Elements = append(set.Elements, config.ElementDef{
			Label:  fmt.Sprintf("e%d", i),
			Width:  math.Floor(20 + rng.Float64()*100),
			Height: math.Floor(20 + rng.Float64()*100),
		})
	}
	return set
}

// simulate runs a session without a window, stepping frames back to back and
// applying force ticks at the same ratio the clocks would.
func simulate(cfg config.Config, opts runOptions, logger *zap.Logger) (report, error) {
	rng := cfg.Rand()
	if opts.Elements > 0 {
		cfg.ElementSets = []config.ElementSet{randomElements(opts.Elements, rng)}
	}
	set, _ := cfg.PickSet(rng)

	elements := make([]session.Element, len(set.Elements))
	labels := make([]string, len(set.Elements))
	for i, el := range set.Elements {
		elements[i] = session.NewBox(el.Label, el.Width, el.Height)
		labels[i] = el.Label
	}

	s, err := session.New(cfg, session.Fixed{Width: opts.Width, Height: opts.Height}, elements, session.Options{
		Logger: logger,
		Rand:   rng,
	})
	if err != nil {
		return report{}, err
	}
	defer s.Close()

	frames := int(opts.Duration / cfg.FrameInterval())
	ticksPerFrame := int(math.Round(float64(cfg.FrameInterval()) / float64(cfg.CenterForce.Interval)))
	if ticksPerFrame < 1 {
		ticksPerFrame = 1
	}

	r := report{Session: s.ID(), Set: set.Name, Frames: frames, Labels: labels, SettledAt: -1}
	for f := range frames {
		for range ticksPerFrame {
			if err := s.TickForces(); err != nil {
				return report{}, err
			}
		}
		if err := s.Frame(); err != nil {
			return report{}, err
		}

		smp := measure(s.Engine())
		r.Samples = append(r.Samples, smp)
		switch {
		case smp.MaxSpeed >= settledSpeed:
			r.SettledAt = -1
		case r.SettledAt < 0:
			r.SettledAt = f
		}
	}

	r.Final, err = s.Transforms()
	if err != nil {
		return report{}, err
	}
	r.Stats = s.Stats()
	return r, nil
}

func measure(e *physics.Engine) sample {
	var smp sample
	_ = e.Locked(func(space *cp.Space) {
		n := 0
		space.EachBody(func(body *cp.Body) {
			if body.GetType() != cp.BODY_DYNAMIC {
				return
			}
			smp.MeanY += body.Position().Y
			smp.MaxSpeed = math.Max(smp.MaxSpeed, body.Velocity().Length())
			n++
		})
		if n > 0 {
			smp.MeanY /= float64(n)
		}
	})
	return smp
}
