package aggregation

import (
	"math"
	"strconv"

	"dla/internal/core"
	"dla/pkg/dla"
)

// Parameters returns the live tunables and cluster statistics.
func (w *World) Parameters() core.ParameterSnapshot {
	cfg := w.engine.Config()
	sp := w.engine.Spawner()
	cluster := w.engine.Cluster()
	stats := w.engine.Stats()
	groups := []core.ParameterGroup{
		{
			Name: "World",
			Params: []core.Parameter{
				intParam("w", "Width", w.grid.W),
				intParam("h", "Height", w.grid.H),
				int64Param("seed", "Seed", w.engine.Seed()),
				floatParam("view", "View half extent", w.cfg.View),
			},
		},
		{
			Name: "Growth",
			Params: []core.Parameter{
				intParam("mode", "Nearest mode", int(cfg.Mode)),
				intParam("growth_rate", "Growth rate", cfg.GrowthRate),
				intParam("max_particles", "Max particles", w.cfg.MaxParticles),
				intParam("max_walk_steps", "Max walk steps", cfg.MaxWalkSteps),
				intParam("tick_budget_ms", "Tick budget (ms)", w.cfg.TickBudgetMS),
				floatParam("step_size", "Step size", cfg.StepSize),
				floatParam("stick_tolerance", "Stick tolerance", cfg.StickTolerance),
				floatParam("stickyness", "Stickyness", cfg.Stickyness),
				floatParam("particle_radius", "Particle radius", cfg.ParticleRadius),
			},
		},
		{
			Name: "Spawner",
			Params: []core.Parameter{
				floatParam("spawn_radius", "Spawn radius", sp.Radius),
				floatParam("spawn_direction", "Spawn direction", sp.Direction),
				floatParam("spawn_angle", "Spawn angle", sp.Angle),
				floatParam("spawn_offset_inner", "Spawn inner offset", sp.OffsetInner),
				boolParam("spawn_clip_floor", "Clip floor", sp.ClipFloor),
				boolParam("spawn_follow", "Follow cluster", w.cfg.SpawnFollow),
				floatParam("spawn_margin", "Follow margin", w.cfg.SpawnMargin),
			},
		},
		{
			Name: "Cluster",
			Params: []core.Parameter{
				intParam("size", "Particles", cluster.Size()),
				floatParam("radius", "Radius", cluster.Radius()),
				floatParam("dimension", "Fractal dimension", cluster.FractalDimension()),
				intParam("attempts", "Attempts", stats.Attempts),
				intParam("outside", "Escaped", stats.Outside),
				intParam("rejected", "Didn't stick", stats.Rejected),
				intParam("step_limited", "Step limited", stats.StepLimited),
				int64Param("steps", "Walk steps", stats.Steps),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the HUD-adjustable tunables.
func (w *World) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "mode", Label: "Nearest mode", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "growth_rate", Label: "Growth rate", Type: core.ParamTypeInt, Step: 5, Min: 1, Max: 1000, HasMin: true, HasMax: true},
		{Key: "stickyness", Label: "Stickyness", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "stick_tolerance", Label: "Stick tolerance", Type: core.ParamTypeFloat, Step: 0.1, Min: 0.1, Max: 8, HasMin: true, HasMax: true},
		{Key: "step_size", Label: "Step size", Type: core.ParamTypeFloat, Step: 0.1, Min: 0.1, Max: 10, HasMin: true, HasMax: true},
		{Key: "particle_radius", Label: "Particle radius", Type: core.ParamTypeFloat, Step: 0.005, Min: 0.005, Max: 0.2, HasMin: true, HasMax: true},
		{Key: "spawn_direction", Label: "Spawn direction", Type: core.ParamTypeFloat, Step: 15, Min: -180, Max: 360, HasMin: true, HasMax: true},
		{Key: "spawn_angle", Label: "Spawn angle", Type: core.ParamTypeFloat, Step: 15, Min: 15, Max: 360, HasMin: true, HasMax: true},
		{Key: "spawn_offset_inner", Label: "Spawn inner offset", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 2, HasMin: true, HasMax: true},
		{Key: "spawn_margin", Label: "Follow margin", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 2, HasMin: true, HasMax: true},
		{Key: "spawn_clip_floor", Label: "Clip floor", Type: core.ParamTypeBool},
		{Key: "spawn_follow", Label: "Follow cluster", Type: core.ParamTypeBool},
	}
}

// SetIntParameter updates an integer tunable. Changes apply from the next burst.
func (w *World) SetIntParameter(key string, value int) bool {
	cfg := w.engine.Config()
	switch key {
	case "mode":
		if value != int(dla.ModeBrownian) && value != int(dla.ModeNearest) {
			return false
		}
		cfg.Mode = dla.Mode(value)
		w.cfg.Mode = cfg.Mode.String()
	case "growth_rate":
		cfg.GrowthRate = value
	case "max_walk_steps":
		cfg.MaxWalkSteps = value
	case "max_particles":
		if value < 0 {
			return false
		}
		w.cfg.MaxParticles = value
		return true
	case "tick_budget_ms":
		if value < 0 {
			return false
		}
		w.cfg.TickBudgetMS = value
		return true
	default:
		return false
	}
	return w.engine.SetConfig(cfg) == nil
}

// SetFloatParameter updates a floating point tunable. Stickyness is clamped to
// [0, 1]; values that would make the engine or spawner invalid are refused.
func (w *World) SetFloatParameter(key string, value float64) bool {
	if math.IsNaN(value) {
		return false
	}
	cfg := w.engine.Config()
	switch key {
	case "step_size":
		cfg.StepSize = value
	case "stick_tolerance":
		cfg.StickTolerance = value
	case "stickyness":
		cfg.Stickyness = math.Min(1, math.Max(0, value))
	case "particle_radius":
		cfg.ParticleRadius = value
	case "spawn_margin":
		if value < 0 {
			return false
		}
		w.cfg.SpawnMargin = value
		w.follow()
		return true
	case "spawn_radius", "spawn_direction", "spawn_angle", "spawn_offset_inner":
		return w.setSpawner(key, value)
	default:
		return false
	}
	return w.engine.SetConfig(cfg) == nil
}

// SetBoolParameter toggles floor clipping or spawn following.
func (w *World) SetBoolParameter(key string, value bool) bool {
	switch key {
	case "spawn_clip_floor":
		w.engine.Spawner().ClipFloor = value
	case "spawn_follow":
		w.cfg.SpawnFollow = value
		w.follow()
	default:
		return false
	}
	return true
}

func (w *World) setSpawner(key string, value float64) bool {
	sp := w.engine.Spawner()
	next := *sp
	switch key {
	case "spawn_radius":
		next.Radius = value
	case "spawn_direction":
		next.Direction = value
	case "spawn_angle":
		next.Angle = value
	case "spawn_offset_inner":
		next.OffsetInner = value
	}
	if next.Validate() != nil {
		return false
	}
	*sp = next
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}
