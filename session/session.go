package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/milk9111/physlayout/config"
	"github.com/milk9111/physlayout/input"
	"github.com/milk9111/physlayout/physics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNoContainer     = errors.New("session: no container")
	ErrNilElement      = errors.New("session: nil element")
	ErrInvalidConfig   = errors.New("session: invalid config")
	ErrBindingMismatch = errors.New("session: body and element counts differ")
	ErrStep            = errors.New("session: step failed")
	ErrStarted         = errors.New("session: already started")
	ErrClosed          = physics.ErrClosed
)

type Options struct {
	Logger *zap.Logger
	// Rand drives placement. Nil uses the config seed.
	Rand *rand.Rand
	// DriveFrames runs Frame on an internal ticker at the configured frame
	// rate. Hosts with their own frame callback leave it off and call Frame.
	DriveFrames bool
}

// Stats are cumulative counters for one session.
type Stats struct {
	Frames      uint64
	Steps       uint64
	ForceTicks  uint64
	Recovered   uint64
	Bodies      int
	Walls       int
	Constraints int
}

// Session binds one container and its elements to a physics world. It owns
// the engine, the force field clock and the optional frame clock.
type Session struct {
	id        string
	cfg       config.Config
	log       *zap.Logger
	container physics.Rect

	elements []Element
	engine   *physics.Engine
	walls    []*physics.Wall
	bodies   []*physics.Body
	field    *physics.ForceField
	drag     *physics.DragController
	handler  input.Handler

	driveFrames bool
	frames      atomic.Uint64
	paused      atomic.Bool
	recovered   uint64

	mu      sync.Mutex
	cancel  context.CancelFunc
	group   *errgroup.Group
	closing bool

	// frameMu serializes Frame and guards buf and closed.
	frameMu sync.Mutex
	buf     []physics.Transform
	closed  bool

	closeOnce sync.Once
	closeErr  error
}

// New builds the world for container and elements. Every element receives a
// hidden transform before any body exists; the first Frame makes them
// visible.
func New(cfg config.Config, container Container, elements []Element, opts Options) (*Session, error) {
	if container == nil {
		return nil, ErrNoContainer
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	for i, el := range elements {
		if el == nil {
			return nil, fmt.Errorf("session: element %d: %w", i, ErrNilElement)
		}
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rng := opts.Rand
	if rng == nil {
		rng = cfg.Rand()
	}

	bounds := container.Bounds()
	local := physics.Rect{Width: bounds.Width, Height: bounds.Height}

	sizes := make([]physics.Rect, len(elements))
	for i, el := range elements {
		b := el.Bounds()
		sizes[i] = physics.Rect{Width: b.Width, Height: b.Height}
		el.SetTransform(physics.Transform{Width: b.Width, Height: b.Height})
	}

	engine := physics.NewEngine(engineOptions(cfg))
	walls := physics.AddWalls(engine, local, wallSides(cfg))
	bodies := physics.AddBodies(engine, local, sizes, bodyOptions(cfg), rng)
	field := physics.NewForceField(engine, local, cfg.CenterForce.Force(), cfg.CenterForce.Interval)

	s := &Session{
		id:          uuid.NewString(),
		cfg:         cfg,
		container:   bounds,
		elements:    append([]Element(nil), elements...),
		engine:      engine,
		walls:       walls,
		bodies:      bodies,
		field:       field,
		handler:     input.Discard,
		driveFrames: opts.DriveFrames,
	}
	if cfg.Mouse.Enabled {
		s.drag = physics.NewDragController(engine, dragOptions(cfg))
		s.handler = s.drag
	}
	s.log = log.With(zap.String("session_id", s.id))
	s.log.Info("session created",
		zap.Int("bodies", len(bodies)),
		zap.Int("walls", len(walls)),
		zap.Bool("mouse", cfg.Mouse.Enabled),
		zap.Float64("width", local.Width),
		zap.Float64("height", local.Height),
	)
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Config() config.Config { return s.cfg }

// Container returns the container bounds captured at New.
func (s *Session) Container() physics.Rect { return s.container }

func (s *Session) Engine() *physics.Engine { return s.engine }

// Input is the drag surface for input routers. It is input.Discard when the
// mouse is disabled.
func (s *Session) Input() input.Handler { return s.handler }

// Drag returns the drag controller, or nil when the mouse is disabled.
func (s *Session) Drag() *physics.DragController { return s.drag }

// Start launches the force field clock and, with DriveFrames, the frame
// clock. Both stop when ctx is done or Close is called.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing {
		return fmt.Errorf("session: start: %w", ErrClosed)
	}
	if s.group != nil {
		return ErrStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	s.cancel, s.group = cancel, g

	g.Go(func() error {
		if err := s.field.Run(gctx); err != nil && !errors.Is(err, ErrClosed) {
			return fmt.Errorf("session: force field: %w", err)
		}
		return nil
	})
	if s.driveFrames {
		g.Go(func() error { return s.runFrames(gctx) })
	}

	s.log.Debug("session clocks started",
		zap.Duration("force_interval", s.field.Interval),
		zap.Bool("drive_frames", s.driveFrames),
	)
	return nil
}

// TickForces applies the force field once, outside its clock. Headless
// runners use it to keep a fixed ratio of force ticks to frames.
func (s *Session) TickForces() error {
	if err := s.field.Tick(); err != nil {
		return fmt.Errorf("session: force tick: %w", err)
	}
	return nil
}

// Wait blocks until the clocks stop and returns the first clock error.
func (s *Session) Wait() error {
	s.mu.Lock()
	g := s.group
	s.mu.Unlock()
	if g == nil {
		return nil
	}
	return g.Wait()
}

// SetPaused stops stepping and force application together. Pausing also
// drops any held body.
func (s *Session) SetPaused(paused bool) {
	s.paused.Store(paused)
	s.field.SetPaused(paused)
	if paused {
		s.handler.Release()
	}
}

func (s *Session) Paused() bool { return s.paused.Load() }

func (s *Session) Stats() Stats {
	return Stats{
		Frames:      s.frames.Load(),
		Steps:       s.engine.Steps(),
		ForceTicks:  s.field.Ticks(),
		Recovered:   s.engine.Recovered(),
		Bodies:      len(s.bodies),
		Walls:       len(s.walls),
		Constraints: s.engine.Constraints(),
	}
}

// Close ends the session: it releases any drag, stops both clocks, waits for
// them, and tears down the world. It is safe to call more than once and
// returns the first clock error, if any. Close must not be called from an
// Element's SetTransform.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.handler.Release()

		s.mu.Lock()
		s.closing = true
		cancel, g := s.cancel, s.group
		s.mu.Unlock()
		if cancel != nil {
			cancel()
			s.closeErr = g.Wait()
		}

		s.frameMu.Lock()
		s.closed = true
		s.engine.Close()
		s.frameMu.Unlock()

		st := s.Stats()
		s.log.Info("session closed",
			zap.Uint64("frames", st.Frames),
			zap.Uint64("steps", st.Steps),
			zap.Uint64("force_ticks", st.ForceTicks),
			zap.Uint64("recovered", st.Recovered),
			zap.Error(s.closeErr),
		)
	})
	return s.closeErr
}

func (s *Session) runFrames(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.FrameInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			if err := s.Frame(); err != nil {
				if errors.Is(err, ErrClosed) {
					return nil
				}
				s.log.Error("frame failed", zap.Error(err))
				return err
			}
		}
	}
}
