package session

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/milk9111/physlayout/config"
	"github.com/milk9111/physlayout/input"
	"github.com/milk9111/physlayout/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func boxes(sizes ...[2]float64) ([]*Box, []Element) {
	bs := make([]*Box, len(sizes))
	els := make([]Element, len(sizes))
	for i, sz := range sizes {
		bs[i] = NewBox("", sz[0], sz[1])
		els[i] = bs[i]
	}
	return bs, els
}

func newSession(t *testing.T, cfg config.Config, els []Element, opts Options) *Session {
	t.Helper()
	if opts.Rand == nil {
		opts.Rand = seeded(1)
	}
	s, err := New(cfg, Fixed{Width: 400, Height: 300}, els, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewBindsElementsInOrder(t *testing.T) {
	bs, els := boxes([2]float64{50, 20}, [2]float64{30, 40}, [2]float64{10, 10})
	s := newSession(t, config.Default(), els, Options{})

	bodies := s.Engine().Bodies()
	require.Len(t, bodies, len(els))
	for i, b := range bodies {
		assert.Equal(t, i, b.Index)
		assert.Equal(t, bs[i].Bounds().Width, b.Width)
		assert.Equal(t, bs[i].Bounds().Height, b.Height)
	}
	assert.Equal(t, 4, s.Stats().Walls)
	assert.NotEmpty(t, s.ID())
}

func TestElementsHiddenUntilFirstFrame(t *testing.T) {
	bs, els := boxes([2]float64{50, 50}, [2]float64{20, 20})
	s := newSession(t, config.Default(), els, Options{})

	for _, b := range bs {
		assert.False(t, b.Transform().Visible)
		assert.Equal(t, uint64(1), b.Writes())
	}

	require.NoError(t, s.Frame())
	for _, b := range bs {
		assert.True(t, b.Transform().Visible)
		assert.Equal(t, uint64(2), b.Writes())
	}
	assert.Equal(t, uint64(1), s.Stats().Frames)
}

func TestNewErrors(t *testing.T) {
	_, els := boxes([2]float64{10, 10})

	_, err := New(config.Default(), nil, els, Options{})
	assert.ErrorIs(t, err, ErrNoContainer)

	bad := config.Default()
	bad.Mouse.Stiffness = 2
	_, err = New(bad, Fixed{Width: 100, Height: 100}, els, Options{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, config.ErrInvalid)

	_, err = New(config.Default(), Fixed{Width: 100, Height: 100}, []Element{nil}, Options{})
	assert.ErrorIs(t, err, ErrNilElement)
}

func TestEmptyElementList(t *testing.T) {
	s := newSession(t, config.Default(), nil, Options{})
	require.NoError(t, s.Frame())
	assert.Zero(t, s.Stats().Bodies)
}

func TestMouseDisabledNeverConstrains(t *testing.T) {
	cfg := config.Default()
	cfg.Mouse.Enabled = false
	_, els := boxes([2]float64{100, 100})
	s := newSession(t, cfg, els, Options{})

	assert.Equal(t, input.Discard, s.Input())
	assert.Nil(t, s.Drag())

	pos := s.Engine().Bodies()[0].CP().Position()
	s.Input().PressStart(pos.X, pos.Y)
	s.Input().Move(pos.X+50, pos.Y)
	require.NoError(t, s.Frame())
	assert.Zero(t, s.Engine().Constraints())
	assert.False(t, s.Input().Holding())
}

func TestMouseEnabledGrabsAndCloseReleases(t *testing.T) {
	_, els := boxes([2]float64{100, 100})
	s := newSession(t, config.Default(), els, Options{})

	pos := s.Engine().Bodies()[0].CP().Position()
	s.Input().PressStart(pos.X, pos.Y)
	require.True(t, s.Input().Holding())
	assert.Equal(t, 1, s.Engine().Constraints())

	require.NoError(t, s.Close())
	assert.False(t, s.Input().Holding())
}

func TestPauseStopsStepping(t *testing.T) {
	_, els := boxes([2]float64{10, 10})
	s := newSession(t, config.Default(), els, Options{})

	require.NoError(t, s.Frame())
	s.SetPaused(true)
	require.NoError(t, s.Frame())
	assert.Equal(t, uint64(1), s.Stats().Steps)
	assert.True(t, s.Paused())

	s.SetPaused(false)
	require.NoError(t, s.Frame())
	assert.Equal(t, uint64(2), s.Stats().Steps)
}

func TestSettleScenario(t *testing.T) {
	cfg := config.Default()
	cfg.CenterForce.Magnitude = 0
	bs, els := boxes([2]float64{50, 50})
	s := newSession(t, cfg, els, Options{})

	for range 600 {
		require.NoError(t, s.Frame())
	}

	tr := bs[0].Transform()
	assert.True(t, tr.Visible)
	assert.InDelta(t, 250, tr.Y, 1.5)
	assert.InDelta(t, 0, tr.Angle, 0.01)
	assert.GreaterOrEqual(t, tr.X, -0.5)
	assert.LessOrEqual(t, tr.X, 350.5)
}

func TestCloseStopsClocks(t *testing.T) {
	cfg := config.Default()
	cfg.CenterForce.Interval = time.Millisecond
	cfg.Simulation.FrameRate = 250
	bs, els := boxes([2]float64{40, 40}, [2]float64{30, 30})
	s := newSession(t, cfg, els, Options{DriveFrames: true})

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrStarted)

	require.Eventually(t, func() bool {
		st := s.Stats()
		return st.Frames > 2 && st.ForceTicks > 2
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, s.Close())
	after := s.Stats()
	writes := []uint64{bs[0].Writes(), bs[1].Writes()}

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, s.Stats())
	assert.Equal(t, writes, []uint64{bs[0].Writes(), bs[1].Writes()})
	assert.NoError(t, s.Wait())
}

func TestContextCancelStopsClocks(t *testing.T) {
	cfg := config.Default()
	cfg.CenterForce.Interval = time.Millisecond
	_, els := boxes([2]float64{40, 40})
	s := newSession(t, cfg, els, Options{DriveFrames: true})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()
	require.NoError(t, s.Wait())

	ticks := s.Stats().ForceTicks
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, ticks, s.Stats().ForceTicks)
}

func TestCloseIsIdempotent(t *testing.T) {
	_, els := boxes([2]float64{10, 10})
	s := newSession(t, config.Default(), els, Options{})

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.ErrorIs(t, s.Frame(), ErrClosed)
	assert.ErrorIs(t, s.Start(context.Background()), ErrClosed)
	assert.True(t, s.Engine().Closed())
}

type panicky struct{ *Box }

func (panicky) SetTransform(t physics.Transform) {
	if t.Visible {
		panic("boom")
	}
}

func TestFramePanicBecomesError(t *testing.T) {
	s := newSession(t, config.Default(), []Element{panicky{NewBox("", 10, 10)}}, Options{})
	assert.ErrorIs(t, s.Frame(), ErrStep)
}

func TestSnapshot(t *testing.T) {
	_, els := boxes([2]float64{50, 20}, [2]float64{30, 40})
	s := newSession(t, config.Default(), els, Options{})
	require.NoError(t, s.Frame())

	layout, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, s.ID(), layout.Session)
	require.Len(t, layout.Poses, 2)
	assert.Equal(t, 30.0, layout.Poses[1].Width)

	data, err := layout.YAML()
	require.NoError(t, err)
	var back Layout
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, layout.Session, back.Session)
	assert.Equal(t, uint64(1), back.Steps)
}

func TestSeededPlacementIsReproducible(t *testing.T) {
	_, a := boxes([2]float64{40, 40}, [2]float64{40, 40})
	_, b := boxes([2]float64{40, 40}, [2]float64{40, 40})
	s1 := newSession(t, config.Default(), a, Options{Rand: seeded(7)})
	s2 := newSession(t, config.Default(), b, Options{Rand: seeded(7)})

	t1, err := s1.Transforms()
	require.NoError(t, err)
	t2, err := s2.Transforms()
	require.NoError(t, err)
	assert.Equal(t, t1, t2)
}

func TestCenterForceIsScaled(t *testing.T) {
	cfg := config.Default()
	cfg.CenterForce.Magnitude = 2
	cfg.CenterForce.Scale = 50
	s := newSession(t, cfg, nil, Options{})

	assert.Equal(t, 100.0, s.field.Magnitude)
}

func TestFrameFailsOnBindingMismatch(t *testing.T) {
	cases := []struct {
		name   string
		adjust func(s *Session, extra *Box)
	}{
		{name: "extra_element", adjust: func(s *Session, extra *Box) { s.elements = append(s.elements, extra) }},
		{name: "missing_element", adjust: func(s *Session, _ *Box) { s.elements = s.elements[:1] }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			bs, els := boxes([2]float64{40, 40}, [2]float64{30, 30})
			s := newSession(t, config.Default(), els, Options{})
			extra := NewBox("extra", 20, 20)
			c.adjust(s, extra)

			assert.ErrorIs(t, s.Frame(), ErrBindingMismatch)
			for _, b := range append(bs, extra) {
				assert.False(t, b.Transform().Visible)
			}
			assert.Zero(t, s.Stats().Frames)
		})
	}
}
