// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig      `yaml:"screen"`
	Physics    PhysicsConfig     `yaml:"physics"`
	Flock      FlockConfig       `yaml:"flock"`
	Weights    WeightsConfig     `yaml:"weights"`
	Scheduler  SchedulerConfig   `yaml:"scheduler"`
	Octree     OctreeConfig      `yaml:"octree"`
	AgentTypes []AgentTypeConfig `yaml:"agent_types"`
	Lures      []LureConfig      `yaml:"lures"`
	Boundaries BoundariesConfig  `yaml:"boundaries"`
	Terrain    TerrainConfig     `yaml:"terrain"`
	Telemetry  TelemetryConfig   `yaml:"telemetry"`
	Bookmarks  BookmarksConfig   `yaml:"bookmarks"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds the fixed step used by headless runs.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// FlockConfig holds the per-school tunables.
type FlockConfig struct {
	Interval            float64 `yaml:"interval"`              // Seconds between target-direction refreshes per agent
	LureCode            int     `yaml:"lure_code"`             // 0 matches every lure
	RadiusOfRepulsion   float64 `yaml:"radius_of_repulsion"`   // Neighbors closer than this push away
	RadiusOfOrientation float64 `yaml:"radius_of_orientation"` // Neighbors closer than this align heading
	SchoolWidth         float64 `yaml:"school_width"`          // Spawn cube edge and octree root size
	AgentSize           float64 `yaml:"agent_size"`            // Edge of the box stored in the octree
}

// WeightsConfig holds the steering weights.
type WeightsConfig struct {
	Self        float64 `yaml:"self"`
	Repulsion   float64 `yaml:"repulsion"`
	Orientation float64 `yaml:"orientation"`
	Attraction  float64 `yaml:"attraction"`
}

// SchedulerConfig holds frame-rate assumptions for chunked recomputation.
type SchedulerConfig struct {
	AssumedFPS float64 `yaml:"assumed_fps"` // Used for the initial chunk size
	MinFPS     float64 `yaml:"min_fps"`     // Bounds the largest chunk a single frame may take
}

// OctreeConfig holds spatial index parameters.
type OctreeConfig struct {
	MinNodeSize float64 `yaml:"min_node_size"`
	Looseness   float64 `yaml:"looseness"`
	MaxEntries  int     `yaml:"max_entries"`
}

// AgentTypeConfig is a spawn template.
type AgentTypeConfig struct {
	Name  string  `yaml:"name"`
	Count int     `yaml:"count"`
	Speed float64 `yaml:"speed"`
}

// LureSettingConfig is one entry of a lure's cyclic schedule.
type LureSettingConfig struct {
	Weight   float64 `yaml:"weight"`
	Range    float64 `yaml:"range"`    // 0 = unlimited
	Duration float64 `yaml:"duration"` // Seconds before moving to the next setting
}

// DriftConfig makes a lure wander between waypoints.
type DriftConfig struct {
	RefreshInterval float64      `yaml:"refresh_interval"`
	Waypoints       [][3]float64 `yaml:"waypoints"`
}

// LureConfig describes one attraction/repulsion point.
type LureConfig struct {
	Name     string              `yaml:"name"`
	Code     int                 `yaml:"code"`
	Position [3]float64          `yaml:"position"`
	Disabled bool                `yaml:"disabled"`
	Settings []LureSettingConfig `yaml:"settings"`
	Drift    *DriftConfig        `yaml:"drift,omitempty"`
}

// MeshConfig builds a triangulated surface from the terrain noise.
type MeshConfig struct {
	Size      float64 `yaml:"size"`
	Cells     int     `yaml:"cells"`
	Base      float64 `yaml:"base"`
	Amplitude float64 `yaml:"amplitude"`
}

// BoundaryConfig describes a floor or ceiling. Exactly one of Height, Reference,
// Terrain or Mesh should be set.
type BoundaryConfig struct {
	Height    *float64    `yaml:"height,omitempty"`
	Reference string      `yaml:"reference,omitempty"` // Name of a lure whose height is used
	Terrain   bool        `yaml:"terrain,omitempty"`
	Mesh      *MeshConfig `yaml:"mesh,omitempty"`
	Padding   float64     `yaml:"padding"`
}

// Sources returns how many height sources are configured.
func (b *BoundaryConfig) Sources() int {
	n := 0
	if b.Height != nil {
		n++
	}
	if b.Reference != "" {
		n++
	}
	if b.Terrain {
		n++
	}
	if b.Mesh != nil {
		n++
	}
	return n
}

// BoundariesConfig holds the optional floor and ceiling.
type BoundariesConfig struct {
	Floor   *BoundaryConfig `yaml:"floor,omitempty"`
	Ceiling *BoundaryConfig `yaml:"ceiling,omitempty"`
}

// TerrainConfig holds the noise height field parameters.
type TerrainConfig struct {
	Seed       int64   `yaml:"seed"`
	Size       float64 `yaml:"size"`       // World edge covered by the grid
	Resolution int     `yaml:"resolution"` // Samples per edge
	Base       float64 `yaml:"base"`       // Height at noise value 0
	Amplitude  float64 `yaml:"amplitude"`
	Scale      float64 `yaml:"scale"` // Base noise frequency
	Octaves    int     `yaml:"octaves"`
	Lacunarity float64 `yaml:"lacunarity"`
	Gain       float64 `yaml:"gain"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// BookmarksConfig holds thresholds for notable flock moments.
type BookmarksConfig struct {
	Polarized PolarizedConfig `yaml:"polarized"`
	Scattered ScatteredConfig `yaml:"scattered"`
	Breach    BreachConfig    `yaml:"breach"`
}

// PolarizedConfig detects a school swimming in near lockstep.
type PolarizedConfig struct {
	Threshold     float64 `yaml:"threshold"`
	StableWindows int     `yaml:"stable_windows"`
}

// ScatteredConfig detects a sudden jump in spread.
type ScatteredConfig struct {
	Multiplier float64 `yaml:"multiplier"`
	MinSpread  float64 `yaml:"min_spread"`
}

// BreachConfig detects many agents outside the boundaries.
type BreachConfig struct {
	Fraction float64 `yaml:"fraction"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Population  int     // Sum of agent type counts
	QueryRadius float64 // max(repulsion, orientation)
	HalfWidth   float64 // SchoolWidth / 2
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns a fresh copy of the embedded defaults.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes over the embedded defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if len(data) > 0 {
		if err := Validate(data); err != nil {
			return nil, err
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		// Boundaries are replaced wholesale, never merged with the defaults.
		var override struct {
			Boundaries BoundariesConfig `yaml:"boundaries"`
		}
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("parsing boundaries: %w", err)
		}
		if override.Boundaries.Floor != nil {
			cfg.Boundaries.Floor = override.Boundaries.Floor
		}
		if override.Boundaries.Ceiling != nil {
			cfg.Boundaries.Ceiling = override.Boundaries.Ceiling
		}
	}

	cfg.Normalize(slog.Default())
	cfg.computeDerived()

	return cfg, nil
}

// Default values substituted for out-of-range settings.
const (
	DefaultInterval    = 0.5
	DefaultTypeCount   = 50
	DefaultTypeSpeed   = 4.0
	DefaultAgentSize   = 0.2
	DefaultSchoolWidth = 20.0
	DefaultAssumedFPS  = 30.0
	DefaultMinFPS      = 15.0
)

// Normalize replaces out-of-range values with safe defaults. Each offending
// setting is reported once; nothing here is fatal.
func (c *Config) Normalize(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	f := &c.Flock
	if f.Interval < 0 || math.IsNaN(f.Interval) {
		logger.Warn("interval_invalid", "interval", f.Interval, "default", DefaultInterval)
		f.Interval = DefaultInterval
	} else if f.Interval > 1 {
		logger.Warn("interval_long", "interval", f.Interval,
			"note", "interpolation windows this long make steering look erratic")
	}
	if f.RadiusOfRepulsion < 0 {
		logger.Warn("radius_invalid", "name", "repulsion", "value", f.RadiusOfRepulsion)
		f.RadiusOfRepulsion = 0
	}
	if f.RadiusOfOrientation < 0 {
		logger.Warn("radius_invalid", "name", "orientation", "value", f.RadiusOfOrientation)
		f.RadiusOfOrientation = 0
	}
	if f.RadiusOfRepulsion > f.RadiusOfOrientation {
		logger.Warn("radius_order",
			"repulsion", f.RadiusOfRepulsion,
			"orientation", f.RadiusOfOrientation,
			"note", "repulsion radius should not exceed orientation radius")
	}
	if f.SchoolWidth <= 0 {
		logger.Warn("school_width_invalid", "value", f.SchoolWidth, "default", DefaultSchoolWidth)
		f.SchoolWidth = DefaultSchoolWidth
	}
	if f.AgentSize <= 0 {
		f.AgentSize = DefaultAgentSize
	}

	w := &c.Weights
	for _, p := range []struct {
		name string
		v    *float64
		def  float64
	}{
		{"self", &w.Self, 5},
		{"repulsion", &w.Repulsion, 1.5},
		{"orientation", &w.Orientation, 1},
		{"attraction", &w.Attraction, 1.5},
	} {
		if *p.v < 0 || math.IsNaN(*p.v) {
			logger.Warn("weight_invalid", "name", p.name, "value", *p.v, "default", p.def)
			*p.v = p.def
		}
	}

	s := &c.Scheduler
	if s.AssumedFPS <= 0 {
		s.AssumedFPS = DefaultAssumedFPS
	}
	if s.MinFPS <= 0 || s.MinFPS > s.AssumedFPS {
		s.MinFPS = math.Min(DefaultMinFPS, s.AssumedFPS)
	}

	o := &c.Octree
	if o.MinNodeSize <= 0 {
		o.MinNodeSize = 0.1
	}
	if o.Looseness < 1 {
		o.Looseness = 1
	}
	if o.Looseness > 2 {
		o.Looseness = 2
	}
	if o.MaxEntries < 1 {
		o.MaxEntries = 8
	}

	if len(c.AgentTypes) == 0 {
		logger.Warn("agent_types_empty", "default_count", DefaultTypeCount, "default_speed", DefaultTypeSpeed)
		c.AgentTypes = []AgentTypeConfig{{Name: "default", Count: DefaultTypeCount, Speed: DefaultTypeSpeed}}
	}
	for i := range c.AgentTypes {
		at := &c.AgentTypes[i]
		if at.Name == "" {
			at.Name = fmt.Sprintf("type%d", i)
		}
		if at.Count < 1 {
			logger.Warn("agent_type_count_invalid", "type", at.Name, "count", at.Count, "default", DefaultTypeCount)
			at.Count = DefaultTypeCount
		}
		if at.Speed <= 0 {
			logger.Warn("agent_type_speed_invalid", "type", at.Name, "speed", at.Speed, "default", DefaultTypeSpeed)
			at.Speed = DefaultTypeSpeed
		}
	}

	for i := range c.Lures {
		l := &c.Lures[i]
		if l.Name == "" {
			l.Name = fmt.Sprintf("lure%d", i)
		}
		if len(l.Settings) == 0 {
			logger.Warn("lure_settings_empty", "lure", l.Name)
			l.Settings = []LureSettingConfig{{Weight: 1, Duration: 1}}
		}
		for j := range l.Settings {
			if l.Settings[j].Range < 0 {
				l.Settings[j].Range = 0
			}
		}
	}

	if c.Boundaries.Floor == nil {
		logger.Warn("boundary_missing", "which", "floor", "note", "no minimum height")
	}
	if c.Boundaries.Ceiling == nil {
		logger.Warn("boundary_missing", "which", "ceiling", "note", "no maximum height")
	}

	t := &c.Terrain
	if t.Resolution < 2 {
		t.Resolution = 2
	}
	if t.Size <= 0 {
		t.Size = f.SchoolWidth
	}
	if t.Octaves < 1 {
		t.Octaves = 1
	}

	if c.Physics.DT <= 0 {
		c.Physics.DT = 1.0 / 60.0
	}
}

// Refresh recomputes derived values after fields are changed in code.
func (c *Config) Refresh() {
	c.computeDerived()
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Population = 0
	for _, at := range c.AgentTypes {
		c.Derived.Population += at.Count
	}
	c.Derived.QueryRadius = math.Max(c.Flock.RadiusOfRepulsion, c.Flock.RadiusOfOrientation)
	c.Derived.HalfWidth = c.Flock.SchoolWidth / 2
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
