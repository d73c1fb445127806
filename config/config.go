// Package config describes a flock scenario: the flock, its vehicles, the camera,
// the wind and the logger. Files are YAML or TOML; missing keys keep their defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/akmonengine/flock/actor"
	"github.com/akmonengine/flock/camera"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig     = errors.New("config: invalid configuration")
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
)

type Config struct {
	Flock   FlockConfig   `yaml:"flock" toml:"flock"`
	Vehicle VehicleConfig `yaml:"vehicle" toml:"vehicle"`
	Camera  CameraConfig  `yaml:"camera" toml:"camera"`
	Wind    WindConfig    `yaml:"wind" toml:"wind"`
	Log     LogConfig     `yaml:"log" toml:"log"`

	// TickRate is the number of simulation steps per second
	TickRate int `yaml:"tick_rate" toml:"tick_rate"`
}

type FlockConfig struct {
	Size        int     `yaml:"size" toml:"size"`
	SpawnRadius float64 `yaml:"spawn_radius" toml:"spawn_radius"`
	Seed        uint64  `yaml:"seed" toml:"seed"`

	NeighborDistance float64 `yaml:"neighbor_distance" toml:"neighbor_distance"`
	Separate         float64 `yaml:"separate" toml:"separate"`
	Align            float64 `yaml:"align" toml:"align"`
	Cohere           float64 `yaml:"cohere" toml:"cohere"`

	// Vehicles farther than HomeRadius from the origin arrive back toward it; 0 disables
	HomeRadius float64 `yaml:"home_radius" toml:"home_radius"`
	Wander     bool    `yaml:"wander" toml:"wander"`

	Workers        int `yaml:"workers" toml:"workers"`
	OctreeCapacity int `yaml:"octree_capacity" toml:"octree_capacity"`
}

// VehicleConfig mirrors actor.PhysicalProps, with angles in degrees
type VehicleConfig struct {
	Mass               float64 `yaml:"mass" toml:"mass"`
	MaxVelocity        float64 `yaml:"max_velocity" toml:"max_velocity"`
	MaxSteerForce      float64 `yaml:"max_steer_force" toml:"max_steer_force"`
	MaxPitchAdjustment float64 `yaml:"max_pitch_adjustment" toml:"max_pitch_adjustment"`
	DesiredSeparation  float64 `yaml:"desired_separation" toml:"desired_separation"`
	Friction           float64 `yaml:"friction" toml:"friction"`
	TrailLength        int     `yaml:"trail_length" toml:"trail_length"`
	LifeExpectancy     int     `yaml:"life_expectancy" toml:"life_expectancy"`

	WanderRadius        float64 `yaml:"wander_radius" toml:"wander_radius"`
	WanderForwardRatio  float64 `yaml:"wander_forward_ratio" toml:"wander_forward_ratio"`
	MaxWanderAdjustment float64 `yaml:"max_wander_adjustment" toml:"max_wander_adjustment"`
}

type CameraConfig struct {
	Position    [3]float64 `yaml:"position" toml:"position"`
	Focus       [3]float64 `yaml:"focus" toml:"focus"`
	Up          [3]float64 `yaml:"up" toml:"up"`
	FieldOfView float64    `yaml:"field_of_view" toml:"field_of_view"` // degrees
	Near        float64    `yaml:"near" toml:"near"`
	// OrbitStep is the orbit angle of one key press, in degrees
	OrbitStep float64 `yaml:"orbit_step" toml:"orbit_step"`
}

type WindConfig struct {
	Enabled    bool    `yaml:"enabled" toml:"enabled"`
	Seed       int64   `yaml:"seed" toml:"seed"`
	NoiseScale float64 `yaml:"noise_scale" toml:"noise_scale"`
	TimeScale  float64 `yaml:"time_scale" toml:"time_scale"`
	Multiplier float64 `yaml:"multiplier" toml:"multiplier"`
}

type LogConfig struct {
	// Path of the log file; empty disables logging
	Path  string `yaml:"path" toml:"path"`
	Level string `yaml:"level" toml:"level"`
}

// Default returns the configuration used when no file overrides it
func Default() *Config {
	props := actor.DefaultPhysicalProps()
	cam := camera.DefaultConfig(1, 1)

	return &Config{
		Flock: FlockConfig{
			Size:             200,
			SpawnRadius:      300,
			Seed:             1,
			NeighborDistance: 100,
			Separate:         1.5,
			Align:            1,
			Cohere:           1,
			HomeRadius:       600,
			Wander:           true,
			Workers:          1,
			OctreeCapacity:   4,
		},
		Vehicle: VehicleConfig{
			Mass:                props.Mass,
			MaxVelocity:         props.MaxVelocity,
			MaxSteerForce:       props.MaxSteerForce,
			MaxPitchAdjustment:  mgl64.RadToDeg(props.MaxPitchAdjustment),
			DesiredSeparation:   props.DesiredSeparation,
			Friction:            props.FrictionCoefficient,
			TrailLength:         props.TrailLength,
			LifeExpectancy:      props.LifeExpectancy,
			WanderRadius:        props.WanderRadius,
			WanderForwardRatio:  props.WanderForwardRatio,
			MaxWanderAdjustment: mgl64.RadToDeg(props.MaxWanderAdjustment),
		},
		Camera: CameraConfig{
			Position:    cam.Position,
			Focus:       cam.Focus,
			Up:          cam.Up,
			FieldOfView: cam.FieldOfView,
			Near:        cam.Near,
			OrbitStep:   5,
		},
		Wind: WindConfig{
			Enabled:    true,
			Seed:       1,
			NoiseScale: 0.01,
			TimeScale:  0.01,
			Multiplier: 2,
		},
		Log: LogConfig{
			Level: "info",
		},
		TickRate: 30,
	}
}

// Load reads a configuration file, choosing the format from its extension
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var c *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		c, err = LoadYAML(f)
	case ".toml":
		c, err = LoadTOML(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}

	return c, nil
}

// LoadYAML decodes a YAML document over the defaults and validates the result.
// Unknown keys are rejected.
func LoadYAML(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadTOML decodes a TOML document over the defaults and validates the result.
// Unknown keys are rejected.
func LoadTOML(r io.Reader) (*Config, error) {
	c := Default()
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, undecoded[0].String())
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the ranges of every section
func (c *Config) Validate() error {
	switch {
	case c.Flock.Size < 0:
		return invalid("flock.size must not be negative, got %d", c.Flock.Size)
	case c.Flock.SpawnRadius < 0:
		return invalid("flock.spawn_radius must not be negative, got %v", c.Flock.SpawnRadius)
	case c.Flock.NeighborDistance <= 0:
		return invalid("flock.neighbor_distance must be positive, got %v", c.Flock.NeighborDistance)
	case c.Flock.HomeRadius < 0:
		return invalid("flock.home_radius must not be negative, got %v", c.Flock.HomeRadius)
	case c.Flock.Workers < 1:
		return invalid("flock.workers must be at least 1, got %d", c.Flock.Workers)
	case c.Flock.OctreeCapacity < 1:
		return invalid("flock.octree_capacity must be at least 1, got %d", c.Flock.OctreeCapacity)
	case c.Camera.FieldOfView <= 0 || c.Camera.FieldOfView >= 180:
		return invalid("camera.field_of_view must be in (0,180), got %v", c.Camera.FieldOfView)
	case c.Camera.Near <= 0:
		return invalid("camera.near must be positive, got %v", c.Camera.Near)
	case mgl64.Vec3(c.Camera.Position) == mgl64.Vec3(c.Camera.Focus):
		return invalid("camera.position and camera.focus must differ")
	case mgl64.Vec3(c.Camera.Up).Len() == 0:
		return invalid("camera.up must not be zero")
	case c.Wind.NoiseScale <= 0 || c.Wind.TimeScale < 0:
		return invalid("wind scales must be positive, got noise %v time %v", c.Wind.NoiseScale, c.Wind.TimeScale)
	case c.TickRate <= 0:
		return invalid("tick_rate must be positive, got %d", c.TickRate)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	if err := c.Props().Validate(); err != nil {
		return fmt.Errorf("%w: vehicle: %w", ErrInvalidConfig, err)
	}

	return nil
}

// Props converts the vehicle section into physical properties
func (c *Config) Props() actor.PhysicalProps {
	v := c.Vehicle
	return actor.PhysicalProps{
		Mass:                v.Mass,
		MaxVelocity:         v.MaxVelocity,
		MaxSteerForce:       v.MaxSteerForce,
		MaxPitchAdjustment:  mgl64.DegToRad(v.MaxPitchAdjustment),
		DesiredSeparation:   v.DesiredSeparation,
		FrictionCoefficient: v.Friction,
		TrailLength:         v.TrailLength,
		LifeExpectancy:      v.LifeExpectancy,
		WanderRadius:        v.WanderRadius,
		WanderForwardRatio:  v.WanderForwardRatio,
		MaxWanderAdjustment: mgl64.DegToRad(v.MaxWanderAdjustment),
	}
}

// CameraConfig converts the camera section for a width x height viewport
func (c *Config) CameraConfig(width, height float64) camera.Config {
	return camera.Config{
		Position:    c.Camera.Position,
		Focus:       c.Camera.Focus,
		Up:          c.Camera.Up,
		FieldOfView: c.Camera.FieldOfView,
		Near:        c.Camera.Near,
		Width:       width,
		Height:      height,
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}
