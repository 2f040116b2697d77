package session

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Pose is one element's transform in a Layout.
type Pose struct {
	Index  int     `yaml:"index"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Angle  float64 `yaml:"angle"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Layout is a point-in-time copy of every element's pose.
type Layout struct {
	Session string  `yaml:"session"`
	Steps   uint64  `yaml:"steps"`
	Width   float64 `yaml:"width"`
	Height  float64 `yaml:"height"`
	Poses   []Pose  `yaml:"poses"`
}

func (s *Session) Snapshot() (Layout, error) {
	transforms, err := s.Transforms()
	if err != nil {
		return Layout{}, err
	}
	layout := Layout{
		Session: s.id,
		Steps:   s.engine.Steps(),
		Width:   s.container.Width,
		Height:  s.container.Height,
		Poses:   make([]Pose, len(transforms)),
	}
	for i, t := range transforms {
		layout.Poses[i] = Pose{Index: i, X: t.X, Y: t.Y, Angle: t.Angle, Width: t.Width, Height: t.Height}
	}
	return layout, nil
}

func (l Layout) YAML() ([]byte, error) {
	data, err := yaml.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("session: marshal layout: %w", err)
	}
	return data, nil
}
