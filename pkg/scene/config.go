package scene

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/geometry"
	"github.com/df07/go-sound-tracer/pkg/listener"
	"github.com/df07/go-sound-tracer/pkg/loaders"
	"github.com/df07/go-sound-tracer/pkg/material"
	"github.com/df07/go-sound-tracer/pkg/tracer"
)

// ErrUnknownPreset is returned for a material preset name that does not exist
var ErrUnknownPreset = errors.New("unknown material preset")

// SceneConfig is the JSON form of a scene file
type SceneConfig struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Group       string           `json:"group,omitempty"`
	MaxBounces  int              `json:"maxBounces,omitempty"`
	Weighting   string           `json:"weighting,omitempty"` // "forward" or "reverse"
	Listener    *ListenerConfig  `json:"listener,omitempty"`
	Spheres     []SphereConfig   `json:"spheres,omitempty"`
	Triangles   []TriangleConfig `json:"triangles,omitempty"`
	Quads       []QuadConfig     `json:"quads,omitempty"`
	Rooms       []RoomConfig     `json:"rooms,omitempty"`
	Meshes      []MeshConfig     `json:"meshes,omitempty"`
}

// MaterialConfig names a preset or gives an explicit retained fraction.
// An explicit retained value overrides the preset's.
type MaterialConfig struct {
	Preset   string   `json:"preset,omitempty"`
	Retained *float64 `json:"retained,omitempty"`
	Source   bool     `json:"source,omitempty"`
}

type ListenerConfig struct {
	Position core.Vec3  `json:"position"`
	Forward  *core.Vec3 `json:"forward,omitempty"`
	Up       *core.Vec3 `json:"up,omitempty"`
	YawDeg   float64    `json:"yawDeg,omitempty"`
}

type SphereConfig struct {
	Center   core.Vec3      `json:"center"`
	Radius   float64        `json:"radius"`
	Material MaterialConfig `json:"material"`
}

type TriangleConfig struct {
	Vertices [3]core.Vec3   `json:"vertices"`
	Material MaterialConfig `json:"material"`
}

type QuadConfig struct {
	Corner   core.Vec3      `json:"corner"`
	U        core.Vec3      `json:"u"`
	V        core.Vec3      `json:"v"`
	Material MaterialConfig `json:"material"`
}

// RoomConfig is an axis-aligned box of triangles; Inward rooms enclose the
// listener, others are obstacles
type RoomConfig struct {
	Center   core.Vec3      `json:"center"`
	HalfSize core.Vec3      `json:"halfSize"`
	Inward   *bool          `json:"inward,omitempty"`
	Material MaterialConfig `json:"material"`
}

// MeshConfig places a PLY mesh. Relative files resolve against the scene
// file's directory; Scale 0 means 1.
type MeshConfig struct {
	File     string         `json:"file"`
	Offset   core.Vec3      `json:"offset"`
	Scale    float64        `json:"scale,omitempty"`
	Material MaterialConfig `json:"material"`
}

// Build resolves the preset and checks the result (no defaults beyond the preset)
func (mc MaterialConfig) Build() (material.Material, error) {
	var m material.Material
	if mc.Preset != "" {
		preset, ok := material.Lookup(strings.ToLower(mc.Preset))
		if !ok {
			return material.Material{}, fmt.Errorf("%w: %q", ErrUnknownPreset, mc.Preset)
		}
		m = preset
	} else if mc.Retained == nil {
		return material.Material{}, fmt.Errorf("material needs a preset or a retained value")
	}
	if mc.Retained != nil {
		m.Retained = *mc.Retained
	}
	if mc.Source {
		m.IsSource = true
	}
	if err := m.Validate(); err != nil {
		return material.Material{}, err
	}
	return m, nil
}

func (lc ListenerConfig) Build() (listener.Pose, error) {
	def := listener.Default()
	forward, up := def.Forward, def.Up
	if lc.Forward != nil {
		forward = *lc.Forward
	}
	if lc.Up != nil {
		up = *lc.Up
	}
	pose, err := listener.New(lc.Position, forward, up)
	if err != nil {
		return listener.Pose{}, err
	}
	if lc.YawDeg != 0 {
		pose = pose.Yaw(lc.YawDeg * math.Pi / 180)
	}
	return pose, nil
}

func (sc SphereConfig) Build() (*geometry.Sphere, error) {
	m, err := sc.Material.Build()
	if err != nil {
		return nil, err
	}
	sphere := geometry.NewSphere(sc.Center, sc.Radius, m)
	if err := sphere.Validate(); err != nil {
		return nil, err
	}
	return sphere, nil
}

func (tc TriangleConfig) Build() (*geometry.Triangle, error) {
	m, err := tc.Material.Build()
	if err != nil {
		return nil, err
	}
	triangle := geometry.NewTriangle(tc.Vertices[0], tc.Vertices[1], tc.Vertices[2], m)
	if err := triangle.Validate(); err != nil {
		return nil, err
	}
	return triangle, nil
}

func (qc QuadConfig) Build() ([]*geometry.Triangle, error) {
	m, err := qc.Material.Build()
	if err != nil {
		return nil, err
	}
	triangles := geometry.NewQuad(qc.Corner, qc.U, qc.V, m)
	for _, t := range triangles {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return triangles, nil
}

func (rc RoomConfig) Build() ([]*geometry.Triangle, error) {
	m, err := rc.Material.Build()
	if err != nil {
		return nil, err
	}
	if rc.HalfSize.X <= 0 || rc.HalfSize.Y <= 0 || rc.HalfSize.Z <= 0 {
		return nil, fmt.Errorf("room half size must be > 0 on all axes, got %v", rc.HalfSize)
	}
	if rc.Inward != nil && !*rc.Inward {
		return geometry.NewBox(rc.Center, rc.HalfSize, m), nil
	}
	return geometry.NewRoom(rc.Center, rc.HalfSize, m), nil
}

// Build loads the mesh and returns its triangles. Degenerate faces are dropped.
func (mc MeshConfig) Build() ([]*geometry.Triangle, error) {
	m, err := mc.Material.Build()
	if err != nil {
		return nil, err
	}
	if mc.Scale < 0 {
		return nil, fmt.Errorf("mesh scale must be >= 0, got %f", mc.Scale)
	}
	scale := mc.Scale
	if scale == 0 {
		scale = 1
	}
	mesh, err := loaders.LoadPLY(mc.File)
	if err != nil {
		return nil, err
	}

	place := func(v core.Vec3) core.Vec3 { return v.Multiply(scale).Add(mc.Offset) }
	triangles := make([]*geometry.Triangle, 0, len(mesh.Faces))
	for _, face := range mesh.Faces {
		t := geometry.NewTriangle(place(mesh.Vertices[face[0]]), place(mesh.Vertices[face[1]]), place(mesh.Vertices[face[2]]), m)
		if err := t.Validate(); err != nil {
			continue
		}
		triangles = append(triangles, t)
	}
	return triangles, nil
}

// Build constructs the runtime scene, collecting every element error
func (c SceneConfig) Build() (*Scene, error) {
	s := newEmpty(c.Name)
	var errs []error

	if c.MaxBounces > 0 {
		s.TracerConfig.MaxBounces = c.MaxBounces
	}
	weighting, err := tracer.ParseWeighting(c.Weighting)
	if err != nil {
		errs = append(errs, err)
	}
	s.TracerConfig.Weighting = weighting

	if c.Listener != nil {
		pose, err := c.Listener.Build()
		if err != nil {
			errs = append(errs, fmt.Errorf("listener: %w", err))
		}
		s.Listener = pose
	}

	for i, sc := range c.Spheres {
		sphere, err := sc.Build()
		if err != nil {
			errs = append(errs, fmt.Errorf("spheres[%d]: %w", i, err))
			continue
		}
		s.Spheres = append(s.Spheres, sphere)
	}
	for i, tc := range c.Triangles {
		triangle, err := tc.Build()
		if err != nil {
			errs = append(errs, fmt.Errorf("triangles[%d]: %w", i, err))
			continue
		}
		s.Triangles = append(s.Triangles, triangle)
	}
	for i, qc := range c.Quads {
		triangles, err := qc.Build()
		if err != nil {
			errs = append(errs, fmt.Errorf("quads[%d]: %w", i, err))
			continue
		}
		s.Triangles = append(s.Triangles, triangles...)
	}
	for i, rc := range c.Rooms {
		triangles, err := rc.Build()
		if err != nil {
			errs = append(errs, fmt.Errorf("rooms[%d]: %w", i, err))
			continue
		}
		s.Triangles = append(s.Triangles, triangles...)
	}
	for i, mc := range c.Meshes {
		triangles, err := mc.Build()
		if err != nil {
			errs = append(errs, fmt.Errorf("meshes[%d]: %w", i, err))
			continue
		}
		s.Triangles = append(s.Triangles, triangles...)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("scene %q: %w", c.Name, err)
	}
	return s, nil
}

// ParseConfig decodes a scene config, rejecting unknown fields
func ParseConfig(data []byte) (*SceneConfig, error) {
	var cfg SceneConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads a scene config file
func LoadConfig(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads and builds a scene file
func Load(path string) (*Scene, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	for i := range cfg.Meshes {
		if cfg.Meshes[i].File != "" && !filepath.IsAbs(cfg.Meshes[i].File) {
			cfg.Meshes[i].File = filepath.Join(filepath.Dir(path), cfg.Meshes[i].File)
		}
	}
	return cfg.Build()
}
