// pkg/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/opd-ai/go-orrery/pkg/camera"
	"github.com/opd-ai/go-orrery/pkg/entity"
	"github.com/opd-ai/go-orrery/pkg/mission"
	"github.com/opd-ai/go-orrery/pkg/physics"
	"github.com/opd-ai/go-orrery/pkg/validation"
)

// EnvPrefix prefixes every environment override, e.g.
// ORRERY_SIMULATION_TIMESPEED=2.
const EnvPrefix = "ORRERY"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// GameConfig contains the static setup of a session. It is read once at
// startup and not modified afterwards.
type GameConfig struct {
	Star       StarConfig       `json:"star" mapstructure:"star"`
	Planets    []BodyConfig     `json:"planets" mapstructure:"planets"`
	Ship       ShipConfig       `json:"ship" mapstructure:"ship"`
	Camera     CameraConfig     `json:"camera" mapstructure:"camera"`
	Mission    MissionConfig    `json:"mission" mapstructure:"mission"`
	Simulation SimulationConfig `json:"simulation" mapstructure:"simulation"`
	Assets     AssetConfig      `json:"assets" mapstructure:"assets"`
}

// StarConfig describes the central star
type StarConfig struct {
	Name        string  `json:"name" mapstructure:"name"`
	Radius      float64 `json:"radius" mapstructure:"radius"`
	Texture     string  `json:"texture" mapstructure:"texture"`
	CoronaScale float64 `json:"coronaScale" mapstructure:"coronaScale"`
	CoronaRate  float64 `json:"coronaRate" mapstructure:"coronaRate"`
}

// BodyConfig describes one planet
type BodyConfig struct {
	Name         string      `json:"name" mapstructure:"name"`
	Radius       float64     `json:"radius" mapstructure:"radius"`
	Distance     float64     `json:"distance" mapstructure:"distance"`
	OrbitRate    float64     `json:"orbitRate" mapstructure:"orbitRate"`
	RotationRate float64     `json:"rotationRate" mapstructure:"rotationRate"`
	Texture      string      `json:"texture,omitempty" mapstructure:"texture"`
	SpecularMap  string      `json:"specularMap,omitempty" mapstructure:"specularMap"`
	NormalMap    string      `json:"normalMap,omitempty" mapstructure:"normalMap"`
	Ring         *RingConfig `json:"ring,omitempty" mapstructure:"ring"`
}

// RingConfig describes a planetary ring in multiples of the planet radius
type RingConfig struct {
	InnerScale float64 `json:"innerScale" mapstructure:"innerScale"`
	OuterScale float64 `json:"outerScale" mapstructure:"outerScale"`
	Texture    string  `json:"texture,omitempty" mapstructure:"texture"`
}

// ShipConfig contains the ship start and flight tuning
type ShipConfig struct {
	StartX            float64 `json:"startX" mapstructure:"startX"`
	StartY            float64 `json:"startY" mapstructure:"startY"`
	StartZ            float64 `json:"startZ" mapstructure:"startZ"`
	Acceleration      float64 `json:"acceleration" mapstructure:"acceleration"`
	BoostAcceleration float64 `json:"boostAcceleration" mapstructure:"boostAcceleration"`
	Damping           float64 `json:"damping" mapstructure:"damping"`
	BrakeDamping      float64 `json:"brakeDamping" mapstructure:"brakeDamping"`
	MaxSpeed          float64 `json:"maxSpeed" mapstructure:"maxSpeed"`
	BoostMaxSpeed     float64 `json:"boostMaxSpeed" mapstructure:"boostMaxSpeed"`
	YawRate           float64 `json:"yawRate" mapstructure:"yawRate"`
	PitchRate         float64 `json:"pitchRate" mapstructure:"pitchRate"`
	PitchLimit        float64 `json:"pitchLimit" mapstructure:"pitchLimit"`
	LookSensitivity   float64 `json:"lookSensitivity" mapstructure:"lookSensitivity"`
	LookDecay         float64 `json:"lookDecay" mapstructure:"lookDecay"`
}

// CameraConfig contains camera placement and smoothing
type CameraConfig struct {
	StartX        float64 `json:"startX" mapstructure:"startX"`
	StartY        float64 `json:"startY" mapstructure:"startY"`
	StartZ        float64 `json:"startZ" mapstructure:"startZ"`
	TrackFactor   float64 `json:"trackFactor" mapstructure:"trackFactor"`
	FocusDuration float64 `json:"focusDuration" mapstructure:"focusDuration"`
	ResetDistance float64 `json:"resetDistance" mapstructure:"resetDistance"`
	ResetDuration float64 `json:"resetDuration" mapstructure:"resetDuration"`
	Damping       float64 `json:"damping" mapstructure:"damping"`
	MinDistance   float64 `json:"minDistance" mapstructure:"minDistance"`
	MaxDistance   float64 `json:"maxDistance" mapstructure:"maxDistance"`
}

// MissionConfig contains scan and pickup rules
type MissionConfig struct {
	ScanDuration       float64 `json:"scanDuration" mapstructure:"scanDuration"`
	DecayRate          float64 `json:"decayRate" mapstructure:"decayRate"`
	MinScanRadius      float64 `json:"minScanRadius" mapstructure:"minScanRadius"`
	ScanRadiusScale    float64 `json:"scanRadiusScale" mapstructure:"scanRadiusScale"`
	ScanBonus          int     `json:"scanBonus" mapstructure:"scanBonus"`
	PickupRadius       float64 `json:"pickupRadius" mapstructure:"pickupRadius"`
	PickupBonus        int     `json:"pickupBonus" mapstructure:"pickupBonus"`
	AnomaliesPerPlanet int     `json:"anomaliesPerPlanet" mapstructure:"anomaliesPerPlanet"`
	AnomalySeed        uint64  `json:"anomalySeed" mapstructure:"anomalySeed"`
}

// SimulationConfig contains loop settings
type SimulationConfig struct {
	TimeSpeed    float64 `json:"timeSpeed" mapstructure:"timeSpeed"`
	TickRate     int     `json:"tickRate" mapstructure:"tickRate"`
	ToastSeconds float64 `json:"toastSeconds" mapstructure:"toastSeconds"`
	StartInShip  bool    `json:"startInShip" mapstructure:"startInShip"`
	Tracking     bool    `json:"tracking" mapstructure:"tracking"`
}

// AssetConfig tells the renderers where textures live
type AssetConfig struct {
	BaseURL     string `json:"baseURL" mapstructure:"baseURL"`
	DefaultTint string `json:"defaultTint" mapstructure:"defaultTint"`
}

// LoadConfig reads a JSON configuration file on top of DefaultConfig and
// applies ORRERY_* environment overrides. An empty path loads the defaults.
func LoadConfig(path string) (*GameConfig, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := DefaultConfig()
	// A configured roster replaces the default one instead of merging into it.
	if v.IsSet("planets") {
		config.Planets = nil
	}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// newViper returns a viper instance seeded with the scalar defaults so
// environment overrides resolve for every key.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var defaults map[string]interface{}
	data, _ := json.Marshal(DefaultConfig())
	_ = json.Unmarshal(data, &defaults)
	setDefaults(v, "", defaults)

	return v
}

func setDefaults(v *viper.Viper, prefix string, values map[string]interface{}) {
	for key, value := range values {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		switch typed := value.(type) {
		case map[string]interface{}:
			setDefaults(v, full, typed)
		case []interface{}:
			// Lists come from the file or the prefilled struct.
		default:
			v.SetDefault(full, typed)
		}
	}
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *GameConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the roster and tuning values.
func (c *GameConfig) Validate() error {
	if _, err := validation.ValidateBodyName(c.Star.Name); err != nil {
		return fmt.Errorf("%w: star: %v", ErrInvalidConfig, err)
	}
	if err := validation.ValidatePositive("star.radius", c.Star.Radius); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if len(c.Planets) == 0 {
		return fmt.Errorf("%w: at least one planet is required", ErrInvalidConfig)
	}

	seen := map[string]bool{strings.ToLower(c.Star.Name): true}
	for i, p := range c.Planets {
		name, err := validation.ValidateBodyName(p.Name)
		if err != nil {
			return fmt.Errorf("%w: planet %d: %v", ErrInvalidConfig, i, err)
		}
		if seen[strings.ToLower(name)] {
			return fmt.Errorf("%w: duplicate body name %q", ErrInvalidConfig, name)
		}
		seen[strings.ToLower(name)] = true

		if err := validation.ValidatePositive(name+".radius", p.Radius); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if err := validation.ValidatePositive(name+".distance", p.Distance); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if !isFinite(p.OrbitRate) || !isFinite(p.RotationRate) {
			return fmt.Errorf("%w: %s rates must be finite", ErrInvalidConfig, name)
		}
		if p.Ring != nil && !(p.Ring.InnerScale > 0 && p.Ring.OuterScale > p.Ring.InnerScale && isFinite(p.Ring.OuterScale)) {
			return fmt.Errorf("%w: %s ring scales must satisfy 0 < inner < outer", ErrInvalidConfig, name)
		}
	}

	finite := []struct {
		field string
		value float64
	}{
		{"star.coronaRate", c.Star.CoronaRate},
		{"ship.startX", c.Ship.StartX},
		{"ship.startY", c.Ship.StartY},
		{"ship.startZ", c.Ship.StartZ},
		{"camera.startX", c.Camera.StartX},
		{"camera.startY", c.Camera.StartY},
		{"camera.startZ", c.Camera.StartZ},
	}
	for _, f := range finite {
		if !isFinite(f.value) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, f.field, f.value)
		}
	}

	positives := []struct {
		field string
		value float64
	}{
		{"ship.acceleration", c.Ship.Acceleration},
		{"ship.boostAcceleration", c.Ship.BoostAcceleration},
		{"ship.maxSpeed", c.Ship.MaxSpeed},
		{"ship.boostMaxSpeed", c.Ship.BoostMaxSpeed},
		{"ship.pitchLimit", c.Ship.PitchLimit},
		{"camera.minDistance", c.Camera.MinDistance},
		{"camera.maxDistance", c.Camera.MaxDistance},
		{"ship.yawRate", c.Ship.YawRate},
		{"ship.pitchRate", c.Ship.PitchRate},
		{"camera.resetDistance", c.Camera.ResetDistance},
		{"mission.scanDuration", c.Mission.ScanDuration},
		{"mission.pickupRadius", c.Mission.PickupRadius},
		{"mission.scanRadiusScale", c.Mission.ScanRadiusScale},
	}
	for _, p := range positives {
		if err := validation.ValidatePositive(p.field, p.value); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	nonNegatives := []struct {
		field string
		value float64
	}{
		{"star.coronaScale", c.Star.CoronaScale},
		{"ship.lookSensitivity", c.Ship.LookSensitivity},
		{"camera.focusDuration", c.Camera.FocusDuration},
		{"camera.resetDuration", c.Camera.ResetDuration},
		{"mission.decayRate", c.Mission.DecayRate},
		{"mission.minScanRadius", c.Mission.MinScanRadius},
		{"mission.scanBonus", float64(c.Mission.ScanBonus)},
		{"mission.pickupBonus", float64(c.Mission.PickupBonus)},
		{"simulation.toastSeconds", c.Simulation.ToastSeconds},
	}
	for _, n := range nonNegatives {
		if err := validation.ValidateNonNegative(n.field, n.value); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	fractions := []struct {
		field string
		value float64
	}{
		{"ship.damping", c.Ship.Damping},
		{"ship.brakeDamping", c.Ship.BrakeDamping},
		{"ship.lookDecay", c.Ship.LookDecay},
		{"camera.trackFactor", c.Camera.TrackFactor},
		{"camera.damping", c.Camera.Damping},
	}
	for _, f := range fractions {
		if !(f.value >= 0 && f.value <= 1) {
			return fmt.Errorf("%w: %s must be within [0, 1], got %v", ErrInvalidConfig, f.field, f.value)
		}
	}

	if c.Camera.MinDistance > c.Camera.MaxDistance {
		return fmt.Errorf("%w: camera.minDistance exceeds camera.maxDistance", ErrInvalidConfig)
	}
	if c.Mission.AnomaliesPerPlanet < 0 {
		return fmt.Errorf("%w: mission.anomaliesPerPlanet must not be negative", ErrInvalidConfig)
	}
	if err := validation.ValidateNonNegative("simulation.timeSpeed", c.Simulation.TimeSpeed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("%w: simulation.tickRate must be positive", ErrInvalidConfig)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// BuildSystem creates the star and planets described by the roster.
func (c *GameConfig) BuildSystem() *entity.System {
	star := entity.NewStar(c.Star.Name, c.Star.Radius)
	if c.Star.CoronaScale > 0 {
		star.Corona = &entity.Corona{Scale: c.Star.CoronaScale, Rate: c.Star.CoronaRate}
	}
	if c.Star.Texture != "" {
		star.Surface = &entity.Surface{Texture: c.Star.Texture}
	}

	planets := make([]*entity.Body, 0, len(c.Planets))
	for i, p := range c.Planets {
		body := entity.NewPlanet(i, p.Name, p.Radius, p.Distance, p.OrbitRate, p.RotationRate)
		if p.Texture != "" || p.SpecularMap != "" || p.NormalMap != "" {
			body.Surface = &entity.Surface{
				Texture:     p.Texture,
				SpecularMap: p.SpecularMap,
				NormalMap:   p.NormalMap,
			}
		}
		if p.Ring != nil {
			body.Ring = &entity.Ring{
				InnerScale: p.Ring.InnerScale,
				OuterScale: p.Ring.OuterScale,
				Texture:    p.Ring.Texture,
			}
		}
		planets = append(planets, body)
	}

	return entity.NewSystem(star, planets)
}

// ShipStart returns the ship spawn point.
func (c *GameConfig) ShipStart() physics.Vector3 {
	return physics.Vector3{c.Ship.StartX, c.Ship.StartY, c.Ship.StartZ}
}

// FlightParams converts the ship tuning for the flight model.
func (c *GameConfig) FlightParams() physics.FlightParams {
	s := c.Ship
	return physics.FlightParams{
		YawRate:           s.YawRate,
		PitchRate:         s.PitchRate,
		LookSensitivity:   s.LookSensitivity,
		LookDecay:         s.LookDecay,
		PitchLimit:        s.PitchLimit,
		Acceleration:      s.Acceleration,
		BoostAcceleration: s.BoostAcceleration,
		Damping:           s.Damping,
		BrakeDamping:      s.BrakeDamping,
		MaxSpeed:          s.MaxSpeed,
		BoostMaxSpeed:     s.BoostMaxSpeed,
	}
}

// CameraParams converts the camera section. Follow offsets are fixed.
func (c *GameConfig) CameraParams() camera.Params {
	p := camera.DefaultParams()
	p.StartPosition = physics.Vector3{c.Camera.StartX, c.Camera.StartY, c.Camera.StartZ}
	p.TrackFactor = c.Camera.TrackFactor
	p.FocusDuration = c.Camera.FocusDuration
	p.ResetDistance = c.Camera.ResetDistance
	p.ResetDuration = c.Camera.ResetDuration
	p.RigDamping = c.Camera.Damping
	p.MinDistance = c.Camera.MinDistance
	p.MaxDistance = c.Camera.MaxDistance
	return p
}

// MissionParams converts the mission section.
func (c *GameConfig) MissionParams() mission.Params {
	m := c.Mission
	return mission.Params{
		ScanDuration:    m.ScanDuration,
		DecayRate:       m.DecayRate,
		MinScanRadius:   m.MinScanRadius,
		ScanRadiusScale: m.ScanRadiusScale,
		ScanBonus:       m.ScanBonus,
		PickupRadius:    m.PickupRadius,
		PickupBonus:     m.PickupBonus,
	}
}

// DefaultConfig returns the standard solar system and tuning
func DefaultConfig() *GameConfig {
	flight := physics.DefaultFlightParams()
	cam := camera.DefaultParams()
	missions := mission.DefaultParams()

	return &GameConfig{
		Star: StarConfig{
			Name:        "Sun",
			Radius:      12,
			Texture:     "sun",
			CoronaScale: 1.35,
			CoronaRate:  entity.CoronaRate,
		},
		Planets: []BodyConfig{
			{Name: "Mercury", Radius: 2.1, Distance: 22, OrbitRate: 0.040, RotationRate: 0.020, Texture: "mercury"},
			{Name: "Venus", Radius: 3.2, Distance: 34, OrbitRate: 0.016, RotationRate: 0.012, Texture: "venus"},
			{
				Name: "Earth", Radius: 3.4, Distance: 50, OrbitRate: 0.010, RotationRate: 0.030,
				Texture: "earth", SpecularMap: "earth_specular", NormalMap: "earth_normal",
			},
			{Name: "Mars", Radius: 2.7, Distance: 70, OrbitRate: 0.008, RotationRate: 0.026, Texture: "mars"},
			{Name: "Jupiter", Radius: 9.6, Distance: 120, OrbitRate: 0.003, RotationRate: 0.045, Texture: "jupiter"},
			{
				Name: "Saturn", Radius: 8.5, Distance: 170, OrbitRate: 0.001, RotationRate: 0.040, Texture: "saturn",
				Ring: &RingConfig{InnerScale: 1.4, OuterScale: 2.4, Texture: "saturn_ring"},
			},
		},
		Ship: ShipConfig{
			StartX:            entity.DefaultShipStart.X(),
			StartY:            entity.DefaultShipStart.Y(),
			StartZ:            entity.DefaultShipStart.Z(),
			Acceleration:      flight.Acceleration,
			BoostAcceleration: flight.BoostAcceleration,
			Damping:           flight.Damping,
			BrakeDamping:      flight.BrakeDamping,
			MaxSpeed:          flight.MaxSpeed,
			BoostMaxSpeed:     flight.BoostMaxSpeed,
			YawRate:           flight.YawRate,
			PitchRate:         flight.PitchRate,
			PitchLimit:        flight.PitchLimit,
			LookSensitivity:   flight.LookSensitivity,
			LookDecay:         flight.LookDecay,
		},
		Camera: CameraConfig{
			StartX:        cam.StartPosition.X(),
			StartY:        cam.StartPosition.Y(),
			StartZ:        cam.StartPosition.Z(),
			TrackFactor:   cam.TrackFactor,
			FocusDuration: cam.FocusDuration,
			ResetDistance: cam.ResetDistance,
			ResetDuration: cam.ResetDuration,
			Damping:       cam.RigDamping,
			MinDistance:   cam.MinDistance,
			MaxDistance:   cam.MaxDistance,
		},
		Mission: MissionConfig{
			ScanDuration:       missions.ScanDuration,
			DecayRate:          missions.DecayRate,
			MinScanRadius:      missions.MinScanRadius,
			ScanRadiusScale:    missions.ScanRadiusScale,
			ScanBonus:          missions.ScanBonus,
			PickupRadius:       missions.PickupRadius,
			PickupBonus:        missions.PickupBonus,
			AnomaliesPerPlanet: 3,
			AnomalySeed:        1,
		},
		Simulation: SimulationConfig{
			TimeSpeed:    1.0,
			TickRate:     60,
			ToastSeconds: 2.5,
			Tracking:     true,
		},
		Assets: AssetConfig{
			DefaultTint: "#8a8f99",
		},
	}
}
