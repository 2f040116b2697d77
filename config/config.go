package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

//go:embed default.yaml
var defaultYAML []byte

type Vec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type Walls struct {
	Top    bool `yaml:"top"`
	Bottom bool `yaml:"bottom"`
	Left   bool `yaml:"left"`
	Right  bool `yaml:"right"`
}

type Friction struct {
	Friction    float64 `yaml:"friction"`
	FrictionAir float64 `yaml:"friction_air"`
}

type Density struct {
	Enabled bool    `yaml:"enabled"`
	Value   float64 `yaml:"value"`
}

type Mouse struct {
	Enabled          bool    `yaml:"enabled"`
	Stiffness        float64 `yaml:"stiffness"`
	AngularStiffness float64 `yaml:"angular_stiffness"`
}

// CenterForce pulls with Magnitude·Scale in integrator force units, the
// same way gravity is Gravity·GravityScale.
type CenterForce struct {
	Magnitude float64       `yaml:"magnitude"`
	Scale     float64       `yaml:"scale"`
	Interval  time.Duration `yaml:"interval"`
}

// Force is the pull applied on every tick.
func (c CenterForce) Force() float64 {
	return c.Magnitude * c.Scale
}

type Simulation struct {
	Step       time.Duration `yaml:"step"`
	FrameRate  int           `yaml:"frame_rate"`
	Iterations int           `yaml:"iterations"`
}

// ElementDef describes one element of a set.
type ElementDef struct {
	Label  string  `yaml:"label"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Color  string  `yaml:"color"`
}

type ElementSet struct {
	Name     string       `yaml:"name"`
	Elements []ElementDef `yaml:"elements"`
}

// Config is the per-session snapshot. Sessions copy it and never write back.
type Config struct {
	Gravity      Vec          `yaml:"gravity"`
	GravityScale float64      `yaml:"gravity_scale"`
	Sleeping     bool         `yaml:"sleeping"`
	Walls        Walls        `yaml:"walls"`
	Friction     Friction     `yaml:"friction"`
	Density      Density      `yaml:"density"`
	Mouse        Mouse        `yaml:"mouse"`
	CenterForce  CenterForce  `yaml:"center_force"`
	Simulation   Simulation   `yaml:"simulation"`
	Seed         uint64       `yaml:"seed"`
	Debug        bool         `yaml:"debug"`
	ElementSets  []ElementSet `yaml:"element_sets"`
}

// Default returns the embedded defaults.
func Default() Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		panic("config: embedded default.yaml: " + err.Error())
	}
	return cfg
}

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "physlayout.yaml"

// Load reads a yaml file over the defaults. With an empty path it tries
// DefaultFile on disk and falls back to the embedded defaults.
func Load(path string) (Config, error) {
	if path == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return Default(), nil
		}
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes yaml over the defaults and validates the result. Keys left
// out keep their default value; element_sets is replaced as a whole.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges. Every number must be finite.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(finite(c.Gravity.X, c.Gravity.Y), "gravity must be finite, got (%v, %v)", c.Gravity.X, c.Gravity.Y)
	check(finite(c.GravityScale) && c.GravityScale >= 0, "gravity_scale must be >= 0, got %v", c.GravityScale)
	check(finite(c.Friction.Friction) && c.Friction.Friction >= 0, "friction must be >= 0, got %v", c.Friction.Friction)
	check(finite(c.Friction.FrictionAir) && c.Friction.FrictionAir >= 0 && c.Friction.FrictionAir <= 1,
		"friction_air must be in [0, 1], got %v", c.Friction.FrictionAir)
	check(!c.Density.Enabled || (finite(c.Density.Value) && c.Density.Value > 0),
		"density.value must be > 0 when enabled, got %v", c.Density.Value)
	check(finite(c.Mouse.Stiffness) && c.Mouse.Stiffness >= 0 && c.Mouse.Stiffness <= 1,
		"mouse.stiffness must be in [0, 1], got %v", c.Mouse.Stiffness)
	check(finite(c.Mouse.AngularStiffness) && c.Mouse.AngularStiffness >= 0 && c.Mouse.AngularStiffness <= 1,
		"mouse.angular_stiffness must be in [0, 1], got %v", c.Mouse.AngularStiffness)
	check(finite(c.CenterForce.Magnitude), "center_force.magnitude must be finite, got %v", c.CenterForce.Magnitude)
	check(finite(c.CenterForce.Scale) && c.CenterForce.Scale >= 0, "center_force.scale must be >= 0, got %v", c.CenterForce.Scale)
	check(c.CenterForce.Interval > 0, "center_force.interval must be positive, got %v", c.CenterForce.Interval)
	check(c.Simulation.Step > 0, "simulation.step must be positive, got %v", c.Simulation.Step)
	check(c.Simulation.FrameRate > 0, "simulation.frame_rate must be positive, got %d", c.Simulation.FrameRate)
	check(c.Simulation.Iterations > 0, "simulation.iterations must be positive, got %d", c.Simulation.Iterations)
	for i, set := range c.ElementSets {
		for j, el := range set.Elements {
			check(finite(el.Width, el.Height) && el.Width >= 0 && el.Height >= 0,
				"element_sets[%d].elements[%d] size must be >= 0, got %vx%v", i, j, el.Width, el.Height)
		}
	}

	return errors.Join(errs...)
}

// Fingerprint hashes the canonical yaml form, so formatting-only edits of a
// config file compare equal.
func (c Config) Fingerprint() uint64 {
	data, err := yaml.Marshal(c)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}

// FrameInterval is the wall-clock period of one rendered frame.
func (c Config) FrameInterval() time.Duration {
	if c.Simulation.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Simulation.FrameRate)
}

// Rand returns the placement random source: seeded when Seed is set,
// otherwise fresh entropy.
func (c Config) Rand() *rand.Rand {
	if c.Seed != 0 {
		return rand.New(rand.NewPCG(c.Seed, c.Seed))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NonEmptySets returns the element sets that have at least one element.
func (c Config) NonEmptySets() []ElementSet {
	var out []ElementSet
	for _, set := range c.ElementSets {
		if len(set.Elements) > 0 {
			out = append(out, set)
		}
	}
	return out
}

// PickSet chooses one non-empty element set at random. ok is false when
// every set is empty.
func (c Config) PickSet(rng *rand.Rand) (ElementSet, bool) {
	sets := c.NonEmptySets()
	if len(sets) == 0 {
		return ElementSet{}, false
	}
	return sets[rng.IntN(len(sets))], true
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
