package config

import (
	"fmt"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/models"
)

const (
	DefaultStrategy    = "packed"
	DefaultDt          = 0.1
	DefaultSteps       = 100
	DefaultRecordEvery = 10
	DefaultBodies      = 250
	DefaultMaxMass     = 1000.0
	DefaultExtent      = 1.0
)

// Initial body distributions.
const (
	DistCube     = "cube"
	DistRing     = "ring"
	DistBinary   = "binary"
	DistExplicit = "explicit"
)

type Config struct {
	Strategy      string     `yaml:"strategy"`
	Dt            float64    `yaml:"dt"`
	Steps         int        `yaml:"steps"`
	RecordEvery   int        `yaml:"record_every"`
	Seed          int64      `yaml:"seed"`
	Lanes         int        `yaml:"lanes"`
	ExactRsqrt    bool       `yaml:"exact_rsqrt"`
	ValidateState bool       `yaml:"validate"`
	Init          InitConfig `yaml:"init"`
}

type InitConfig struct {
	Distribution string  `yaml:"distribution"`
	NumBodies    int     `yaml:"num_bodies"`
	MaxMass      float64 `yaml:"max_mass"`
	Extent       float64 `yaml:"extent"`
	Radius       float64 `yaml:"radius"`
	Mass         float64 `yaml:"mass"`
	Mass2        float64 `yaml:"mass2"`
	Speed        float64 `yaml:"speed"`
	Separation   float64 `yaml:"separation"`

	Bodies []BodyConfig `yaml:"bodies,omitempty"`
}

type BodyConfig struct {
	Mass     float64    `yaml:"mass"`
	Position [3]float64 `yaml:"position,flow"`
	Velocity [3]float64 `yaml:"velocity,flow"`
}

func DefaultConfig() *Config {
	return &Config{
		Strategy:      DefaultStrategy,
		Dt:            DefaultDt,
		Steps:         DefaultSteps,
		RecordEvery:   DefaultRecordEvery,
		Seed:          1,
		ValidateState: true,
		Init: InitConfig{
			Distribution: DistCube,
			NumBodies:    DefaultBodies,
			MaxMass:      DefaultMaxMass,
			Extent:       DefaultExtent,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields that cannot be defaulted. Strategy names are
// checked by the experiment registry.
func (c *Config) Validate() error {
	if err := c.RunConfig().Validate(); err != nil {
		return err
	}
	if c.Lanes < 0 {
		return fmt.Errorf("%w: lanes must not be negative, got %d", dynamo.ErrInvalidConfig, c.Lanes)
	}

	in := c.Init
	switch in.Distribution {
	case DistCube:
		if in.NumBodies <= 0 || in.MaxMass <= 0 || in.Extent <= 0 {
			return fmt.Errorf("%w: cube needs positive num_bodies, max_mass and extent", dynamo.ErrInvalidConfig)
		}
	case DistRing:
		if in.NumBodies <= 0 || in.Mass <= 0 || in.Radius <= 0 {
			return fmt.Errorf("%w: ring needs positive num_bodies, mass and radius", dynamo.ErrInvalidConfig)
		}
	case DistBinary:
		if in.Mass <= 0 || in.Mass2 <= 0 || in.Separation <= 0 {
			return fmt.Errorf("%w: binary needs positive mass, mass2 and separation", dynamo.ErrInvalidConfig)
		}
	case DistExplicit:
		if len(in.Bodies) == 0 {
			return fmt.Errorf("%w: explicit distribution lists no bodies", dynamo.ErrInvalidConfig)
		}
		for i, b := range in.Bodies {
			if b.Mass <= 0 {
				return fmt.Errorf("%w: body %d has non-positive mass %g", dynamo.ErrInvalidConfig, i, b.Mass)
			}
		}
	default:
		return fmt.Errorf("%w: unknown distribution %q", dynamo.ErrInvalidConfig, in.Distribution)
	}
	return nil
}

// RunConfig returns the step loop settings.
func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            c.Dt,
		Steps:         c.Steps,
		RecordEvery:   c.RecordEvery,
		ValidateState: c.ValidateState,
	}
}

// InitialBodies builds the starting ensemble. Random distributions are seeded
// from c.Seed, so the same config always yields the same bodies.
func (c *Config) InitialBodies() []dynamo.Body {
	in := c.Init
	switch in.Distribution {
	case DistRing:
		return models.Ring(in.NumBodies, in.Radius, in.Mass, in.Speed)
	case DistBinary:
		return models.Binary(in.Mass, in.Mass2, in.Separation)
	case DistExplicit:
		bodies := make([]dynamo.Body, len(in.Bodies))
		for i, b := range in.Bodies {
			bodies[i] = dynamo.Body{
				Mass:     b.Mass,
				Position: dynamo.Vec3{X: b.Position[0], Y: b.Position[1], Z: b.Position[2]},
				Velocity: dynamo.Vec3{X: b.Velocity[0], Y: b.Velocity[1], Z: b.Velocity[2]},
			}
		}
		return bodies
	default:
		rng := rand.New(rand.NewSource(c.Seed))
		return models.RandomCube(in.NumBodies, in.MaxMass, in.Extent, rng)
	}
}

// Clone returns a deep copy, so presets can be tweaked by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Init.Bodies = append([]BodyConfig(nil), c.Init.Bodies...)
	return &out
}
