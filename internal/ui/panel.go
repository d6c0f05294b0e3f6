package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"dla/internal/core"
)

// Panel tracks the HUD-adjustable controls of a simulation and applies
// stepped adjustments through the simulation's parameter setters.
type Panel struct {
	Title    string
	controls []controlState

	intSetter   core.IntParameterSetter
	floatSetter core.FloatParameterSetter
	boolSetter  core.BoolParameterSetter
}

type controlState struct {
	control core.ParameterControl
	value   string

	intValue   int
	floatValue float64
	boolValue  bool
	hasValue   bool
}

// NewPanel builds a panel for sim. Simulations without controls get an empty
// panel.
func NewPanel(sim core.Sim) *Panel {
	p := &Panel{Title: buildTitle(sim)}
	if provider, ok := sim.(core.ParameterControlsProvider); ok {
		for _, ctrl := range provider.ParameterControls() {
			p.controls = append(p.controls, controlState{control: ctrl, value: "--"})
		}
	}
	if setter, ok := sim.(core.IntParameterSetter); ok {
		p.intSetter = setter
	}
	if setter, ok := sim.(core.FloatParameterSetter); ok {
		p.floatSetter = setter
	}
	if setter, ok := sim.(core.BoolParameterSetter); ok {
		p.boolSetter = setter
	}
	return p
}

func buildTitle(sim core.Sim) string {
	if sim == nil || sim.Name() == "" {
		return "Controls"
	}
	return fmt.Sprintf("%s Controls", strings.ToUpper(sim.Name()))
}

// Len returns the number of controls.
func (p *Panel) Len() int { return len(p.controls) }

// Label returns the label and formatted value of control i.
func (p *Panel) Label(i int) (string, string) {
	return p.controls[i].control.Label, p.controls[i].value
}

// HasValue reports whether control i has a current value.
func (p *Panel) HasValue(i int) bool { return p.controls[i].hasValue }

// Refresh reads current values from a parameter snapshot.
func (p *Panel) Refresh(snapshot core.ParameterSnapshot) {
	for i := range p.controls {
		state := &p.controls[i]
		param, ok := snapshot.Lookup(state.control.Key)
		state.hasValue = false
		state.value = "--"
		if !ok {
			continue
		}
		switch state.control.Type {
		case core.ParamTypeInt:
			parsed, err := strconv.Atoi(param.Value)
			if err != nil {
				continue
			}
			state.intValue = parsed
			state.value = strconv.Itoa(parsed)
		case core.ParamTypeFloat:
			parsed, err := strconv.ParseFloat(param.Value, 64)
			if err != nil {
				continue
			}
			state.floatValue = parsed
			state.value = formatFloat(state.control, parsed)
		case core.ParamTypeBool:
			parsed, err := strconv.ParseBool(param.Value)
			if err != nil {
				continue
			}
			state.boolValue = parsed
			state.value = onOff(parsed)
		default:
			continue
		}
		state.hasValue = true
	}
}

// CanAdjust reports whether stepping control i in direction would change it.
func (p *Panel) CanAdjust(i, direction int) bool {
	state := &p.controls[i]
	if !state.hasValue || direction == 0 {
		return false
	}
	switch state.control.Type {
	case core.ParamTypeInt:
		return p.intSetter != nil && intTarget(state, direction) != state.intValue
	case core.ParamTypeFloat:
		return p.floatSetter != nil && math.Abs(floatTarget(state, direction)-state.floatValue) >= 1e-9
	case core.ParamTypeBool:
		return p.boolSetter != nil && state.boolValue != (direction > 0)
	}
	return false
}

// Adjust steps control i in direction, clamped to its bounds. Booleans turn
// on for positive directions and off for negative ones.
func (p *Panel) Adjust(i, direction int) bool {
	if !p.CanAdjust(i, direction) {
		return false
	}
	state := &p.controls[i]
	switch state.control.Type {
	case core.ParamTypeInt:
		target := intTarget(state, direction)
		if !p.intSetter.SetIntParameter(state.control.Key, target) {
			return false
		}
		state.intValue = target
		state.value = strconv.Itoa(target)
	case core.ParamTypeFloat:
		target := floatTarget(state, direction)
		if !p.floatSetter.SetFloatParameter(state.control.Key, target) {
			return false
		}
		state.floatValue = target
		state.value = formatFloat(state.control, target)
	case core.ParamTypeBool:
		target := direction > 0
		if !p.boolSetter.SetBoolParameter(state.control.Key, target) {
			return false
		}
		state.boolValue = target
		state.value = onOff(target)
	}
	return true
}

func intTarget(state *controlState, direction int) int {
	ctrl := state.control
	step := int(math.Round(ctrl.Step))
	if step <= 0 {
		step = 1
	}
	target := state.intValue + direction*step
	if ctrl.HasMin {
		target = max(target, int(math.Round(ctrl.Min)))
	}
	if ctrl.HasMax {
		target = min(target, int(math.Round(ctrl.Max)))
	}
	return target
}

func floatTarget(state *controlState, direction int) float64 {
	ctrl := state.control
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	target := state.floatValue + float64(direction)*step
	if ctrl.HasMin && target < ctrl.Min {
		target = ctrl.Min
	}
	if ctrl.HasMax && target > ctrl.Max {
		target = ctrl.Max
	}
	return target
}

func formatFloat(ctrl core.ParameterControl, value float64) string {
	step := ctrl.Step
	if step <= 0 {
		step = 0.05
	}
	precision := 1
	switch {
	case step < 0.001:
		precision = 4
	case step < 0.01:
		precision = 3
	case step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
