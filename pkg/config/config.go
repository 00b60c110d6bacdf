// Package config holds the viewer settings and reads and writes them as
// TOML. Keys missing from a file keep their default values; unknown keys
// are ignored.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// MaxLevelLimit caps Subdivision.MaxLevel. Each level quadruples the face
// count.
const MaxLevelLimit = 8

// Selection modes.
const (
	SelectNone   = "none"
	SelectVertex = "vertex"
	SelectEdge   = "edge"
)

// Settings is the full viewer configuration.
type Settings struct {
	Viewer          Viewer          `toml:"viewer" json:"viewer"`
	ReflectionLines ReflectionLines `toml:"reflection_lines" json:"reflectionLines"`
	Subdivision     Subdivision     `toml:"subdivision" json:"subdivision"`
	Kernel          Kernel          `toml:"kernel" json:"kernel"`
}

// Viewer controls the camera and how the mesh is drawn.
type Viewer struct {
	Wireframe     bool    `toml:"wireframe" json:"wireframe"`
	FoV           float64 `toml:"fov" json:"fov"` // vertical, degrees
	NearPlane     float64 `toml:"near_plane" json:"nearPlane"`
	FarPlane      float64 `toml:"far_plane" json:"farPlane"`
	AspectRatio   float64 `toml:"aspect_ratio" json:"aspectRatio"`
	PointSize     int     `toml:"point_size" json:"pointSize"`
	SelectionMode string  `toml:"selection_mode" json:"selectionMode"`
}

// ReflectionLines configures the reflection line shading used to judge
// surface smoothness.
type ReflectionLines struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	Density int  `toml:"density" json:"density"`
	// Axis is the direction the lines run along.
	Axis [3]int `toml:"axis" json:"axis"`
}

// Subdivision bounds the level cache.
type Subdivision struct {
	MaxLevel     int `toml:"max_level" json:"maxLevel"`
	InitialLevel int `toml:"initial_level" json:"initialLevel"`
}

// Kernel configures solid tessellation for scene scripts.
type Kernel struct {
	MeshCells int `toml:"mesh_cells" json:"meshCells"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		Viewer: Viewer{
			Wireframe:     true,
			FoV:           90,
			NearPlane:     0.1,
			FarPlane:      40,
			AspectRatio:   16.0 / 9.0,
			PointSize:     8,
			SelectionMode: SelectNone,
		},
		ReflectionLines: ReflectionLines{
			Enabled: false,
			Density: 30,
			Axis:    [3]int{1, 0, 0},
		},
		Subdivision: Subdivision{
			MaxLevel:     6,
			InitialLevel: 0,
		},
		Kernel: Kernel{
			MeshCells: 24,
		},
	}
}

// Validate reports the first setting that is out of range.
func (s *Settings) Validate() error {
	v := s.Viewer
	switch {
	case v.FoV <= 0 || v.FoV >= 180:
		return fmt.Errorf("config: viewer.fov must be in (0, 180), got %g", v.FoV)
	case v.NearPlane <= 0:
		return fmt.Errorf("config: viewer.near_plane must be positive, got %g", v.NearPlane)
	case v.FarPlane <= v.NearPlane:
		return fmt.Errorf("config: viewer.far_plane %g must exceed near_plane %g", v.FarPlane, v.NearPlane)
	case v.AspectRatio <= 0:
		return fmt.Errorf("config: viewer.aspect_ratio must be positive, got %g", v.AspectRatio)
	case v.PointSize < 1:
		return fmt.Errorf("config: viewer.point_size must be at least 1, got %d", v.PointSize)
	case v.SelectionMode != SelectNone && v.SelectionMode != SelectVertex && v.SelectionMode != SelectEdge:
		return fmt.Errorf("config: viewer.selection_mode must be %q, %q or %q, got %q", SelectNone, SelectVertex, SelectEdge, v.SelectionMode)
	}

	r := s.ReflectionLines
	if r.Density < 1 {
		return fmt.Errorf("config: reflection_lines.density must be at least 1, got %d", r.Density)
	}
	if r.Axis == [3]int{} {
		return fmt.Errorf("config: reflection_lines.axis must not be zero")
	}

	d := s.Subdivision
	if d.MaxLevel < 0 || d.MaxLevel > MaxLevelLimit {
		return fmt.Errorf("config: subdivision.max_level must be in [0, %d], got %d", MaxLevelLimit, d.MaxLevel)
	}
	if d.InitialLevel < 0 || d.InitialLevel > d.MaxLevel {
		return fmt.Errorf("config: subdivision.initial_level must be in [0, %d], got %d", d.MaxLevel, d.InitialLevel)
	}

	if s.Kernel.MeshCells < 2 {
		return fmt.Errorf("config: kernel.mesh_cells must be at least 2, got %d", s.Kernel.MeshCells)
	}
	return nil
}

// Parse decodes TOML on top of the defaults and validates the result.
func Parse(data []byte) (*Settings, error) {
	s := Default()
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	return Parse(data)
}

// Save validates s and writes it to path as TOML.
func (s *Settings) Save(path string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: save: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: save: %w", err)
	}
	return nil
}
