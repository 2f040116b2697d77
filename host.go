package main

import (
	"context"
	"fmt"
	"image/color"
	"math/rand/v2"

	"github.com/milk9111/physlayout/config"
	"github.com/milk9111/physlayout/physics"
	"github.com/milk9111/physlayout/render"
	"github.com/milk9111/physlayout/session"
	"go.uber.org/zap"
)

// scene is one live session plus the boxes it drives.
type scene struct {
	set     string
	boxes   []*session.Box
	colors  []color.Color
	session *session.Session
	cancel  context.CancelFunc
}

// pickScene chooses a random non-empty element set and builds one box per
// element. An empty config yields an empty scene.
func pickScene(cfg config.Config, rng *rand.Rand) (string, []*session.Box, []color.Color) {
	set, ok := cfg.PickSet(rng)
	if !ok {
		return "", nil, nil
	}
	boxes := make([]*session.Box, len(set.Elements))
	colors := make([]color.Color, len(set.Elements))
	for i, el := range set.Elements {
		boxes[i] = session.NewBox(el.Label, el.Width, el.Height)
		colors[i] = render.Color(el.Color, i)
	}
	return set.Name, boxes, colors
}

func startScene(cfg config.Config, container physics.Rect, rng *rand.Rand, logger *zap.Logger) (*scene, error) {
	name, boxes, colors := pickScene(cfg, rng)
	elements := make([]session.Element, len(boxes))
	for i, b := range boxes {
		elements[i] = b
	}

	s, err := session.New(cfg, session.Fixed(container), elements, session.Options{
		Logger: logger.With(zap.String("set", name)),
		Rand:   rng,
	})
	if err != nil {
		return nil, fmt.Errorf("start scene %q: %w", name, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		cancel()
		_ = s.Close()
		return nil, fmt.Errorf("start scene %q: %w", name, err)
	}
	return &scene{set: name, boxes: boxes, colors: colors, session: s, cancel: cancel}, nil
}

func (sc *scene) close() error {
	if sc == nil {
		return nil
	}
	err := sc.session.Close()
	sc.cancel()
	return err
}

func (sc *scene) sprites(dst []render.Sprite) []render.Sprite {
	for i, b := range sc.boxes {
		dst = append(dst, render.Sprite{Label: b.Label, Color: sc.colors[i], Transform: b.Transform()})
	}
	return dst
}
