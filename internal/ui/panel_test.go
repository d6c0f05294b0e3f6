package ui

import (
	"strconv"
	"testing"

	"dla/internal/core"
)

type fakeSim struct {
	rate       int
	stickyness float64
	follow     bool
}

func (f *fakeSim) Name() string { return "dla" }
func (f *fakeSim) Size() core.Size { return core.Size{W: 1, H: 1} }
func (f *fakeSim) Reset(int64) {}
func (f *fakeSim) Step() {}
func (f *fakeSim) Cells() []uint8 { return []uint8{0} }

func (f *fakeSim) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "growth_rate", Label: "Growth rate", Type: core.ParamTypeInt, Step: 5, Min: 1, Max: 12, HasMin: true, HasMax: true},
		{Key: "stickyness", Label: "Stickyness", Type: core.ParamTypeFloat, Step: 0.05, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "spawn_follow", Label: "Follow", Type: core.ParamTypeBool},
		{Key: "missing", Label: "Missing", Type: core.ParamTypeInt},
	}
}

func (f *fakeSim) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{Params: []core.Parameter{
		{Key: "growth_rate", Type: core.ParamTypeInt, Value: strconv.Itoa(f.rate)},
		{Key: "stickyness", Type: core.ParamTypeFloat, Value: strconv.FormatFloat(f.stickyness, 'f', -1, 64)},
		{Key: "spawn_follow", Type: core.ParamTypeBool, Value: strconv.FormatBool(f.follow)},
	}}}}
}

func (f *fakeSim) SetIntParameter(key string, v int) bool {
	if key != "growth_rate" {
		return false
	}
	f.rate = v
	return true
}

func (f *fakeSim) SetFloatParameter(key string, v float64) bool {
	if key != "stickyness" {
		return false
	}
	f.stickyness = v
	return true
}

func (f *fakeSim) SetBoolParameter(key string, v bool) bool {
	if key != "spawn_follow" {
		return false
	}
	f.follow = v
	return true
}

func TestPanelAdjustClampsToBounds(t *testing.T) {
	sim := &fakeSim{rate: 10, stickyness: 0.98}
	p := NewPanel(sim)
	if p.Title != "DLA Controls" || p.Len() != 4 {
		t.Fatalf("unexpected panel %q with %d controls", p.Title, p.Len())
	}
	p.Refresh(sim.Parameters())

	if !p.Adjust(0, 1) || sim.rate != 12 {
		t.Fatalf("expected rate clamped to 12, got %d", sim.rate)
	}
	if p.CanAdjust(0, 1) {
		t.Fatal("rate at max should not step up")
	}
	if !p.Adjust(0, -1) || sim.rate != 7 {
		t.Fatalf("expected rate 7, got %d", sim.rate)
	}

	if !p.Adjust(1, 1) || sim.stickyness != 1 {
		t.Fatalf("expected stickyness clamped to 1, got %v", sim.stickyness)
	}
	if _, v := p.Label(1); v != "1.00" {
		t.Fatalf("unexpected formatted value %q", v)
	}

	if p.CanAdjust(2, -1) || !p.Adjust(2, 1) || !sim.follow {
		t.Fatal("bool control should only turn on when off")
	}
	if _, v := p.Label(2); v != "on" {
		t.Fatalf("expected on, got %q", v)
	}

	if p.HasValue(3) || p.CanAdjust(3, 1) {
		t.Fatal("controls missing from the snapshot are inert")
	}
}

func TestPanelWithoutControls(t *testing.T) {
	p := NewPanel(nil)
	if p.Title != "Controls" || p.Len() != 0 {
		t.Fatalf("unexpected panel %q with %d controls", p.Title, p.Len())
	}
	p.Refresh(core.ParameterSnapshot{})
}
