package polysaw

import (
	"github.com/justyntemme/polyvoice/pkg/dsp/filter"
	"github.com/justyntemme/polyvoice/pkg/framework/param"
)

// Parameter IDs
const (
	ParamShape uint32 = iota
	ParamWidth
	ParamCutoff
	ParamResonance
	ParamFilterMode
	ParamTracking
	ParamFilterEnv
	ParamAttack
	ParamDecay
	ParamSustain
	ParamRelease
	ParamVelocity
	ParamMGRate
	ParamMGDelay
	ParamMGPitch
	ParamMGFilter
	ParamWheel
	ParamWheelRate
	ParamWheelPitch
	ParamWheelFilter
	ParamPitchBend
	ParamTimbre
	ParamTimbreFilter
	ParamVolume
)

// Shape is the oscillator waveform.
type Shape int

const (
	ShapeSaw Shape = iota
	ShapeSquare
	ShapeTriangle
	ShapePulse
)

// params holds the resolved parameters so the audio thread never looks
// them up by id.
type params struct {
	shape        *param.Parameter
	width        *param.Parameter
	cutoff       *param.Parameter
	resonance    *param.Parameter
	filterMode   *param.Parameter
	tracking     *param.Parameter
	filterEnv    *param.Parameter
	attack       *param.Parameter
	decay        *param.Parameter
	sustain      *param.Parameter
	release      *param.Parameter
	velocity     *param.Parameter
	mgRate       *param.Parameter
	mgDelay      *param.Parameter
	mgPitch      *param.Parameter
	mgFilter     *param.Parameter
	wheel        *param.Parameter
	wheelRate    *param.Parameter
	wheelPitch   *param.Parameter
	wheelFilter  *param.Parameter
	pitchBend    *param.Parameter
	timbre       *param.Parameter
	timbreFilter *param.Parameter
	volume       *param.Parameter
}

func newParams() *params {
	return &params{
		shape: param.Choice(ParamShape, "Shape", []param.ChoiceOption{
			{Value: float64(ShapeSaw), Name: "Saw"},
			{Value: float64(ShapeSquare), Name: "Square"},
			{Value: float64(ShapeTriangle), Name: "Triangle", Aliases: []string{"tri"}},
			{Value: float64(ShapePulse), Name: "Pulse", Aliases: []string{"pwm"}},
		}).Build(),
		width: param.PercentParameter(ParamWidth, "Pulse Width", 50).ShortName("Width").Build(),

		// cutoff is a MIDI pitch so that modulation adds in semitones
		cutoff: param.New(ParamCutoff, "Cutoff").
			Range(0, 128).
			Default(64).
			Unit("st").
			Build(),
		resonance: param.PercentParameter(ParamResonance, "Resonance", 15).ShortName("Res").Build(),
		filterMode: param.Choice(ParamFilterMode, "Filter Mode", []param.ChoiceOption{
			{Value: float64(filter.Lowpass), Name: "Lowpass", Aliases: []string{"lp"}},
			{Value: float64(filter.Bandpass), Name: "Bandpass", Aliases: []string{"bp"}},
			{Value: float64(filter.Highpass), Name: "Highpass", Aliases: []string{"hp"}},
			{Value: float64(filter.Notch), Name: "Notch"},
		}).ShortName("Mode").Build(),
		tracking:  param.PercentParameter(ParamTracking, "Key Tracking", 50).ShortName("Tracking").Build(),
		filterEnv: param.PercentParameter(ParamFilterEnv, "Filter Envelope", 30).ShortName("FilterEnv").Build(),

		attack:   param.TimeParameter(ParamAttack, "Attack", 1, 10000, 5).Build(),
		decay:    param.TimeParameter(ParamDecay, "Decay", 1, 10000, 200).Build(),
		sustain:  param.PercentParameter(ParamSustain, "Sustain", 70).Build(),
		release:  param.TimeParameter(ParamRelease, "Release", 1, 10000, 250).Build(),
		velocity: param.PercentParameter(ParamVelocity, "Velocity Sensitivity", 100).ShortName("Velocity").Build(),

		mgRate:   param.PercentParameter(ParamMGRate, "MG Rate", 50).ShortName("MGRate").Build(),
		mgDelay:  param.TimeParameter(ParamMGDelay, "MG Delay", 0, 10000, 0).ShortName("MGDelay").Build(),
		mgPitch:  param.PercentParameter(ParamMGPitch, "MG Pitch", 0).ShortName("MGPitch").Build(),
		mgFilter: param.PercentParameter(ParamMGFilter, "MG Filter", 0).ShortName("MGFilter").Build(),

		wheel:       param.PercentParameter(ParamWheel, "Mod Wheel", 0).ShortName("Wheel").Build(),
		wheelRate:   param.PercentParameter(ParamWheelRate, "Wheel Rate", 50).ShortName("WheelRate").Build(),
		wheelPitch:  param.PercentParameter(ParamWheelPitch, "Wheel Pitch Depth", 10).ShortName("WheelPitch").Build(),
		wheelFilter: param.PercentParameter(ParamWheelFilter, "Wheel Filter Depth", 0).ShortName("WheelFilter").Build(),

		pitchBend: param.New(ParamPitchBend, "Pitch Bend").
			Range(-1, 1).
			Default(0).
			ShortName("Bend").
			Build(),
		timbre: param.New(ParamTimbre, "Timbre").
			Range(0, 1).
			Default(0).
			Build(),
		timbreFilter: param.PercentParameter(ParamTimbreFilter, "Timbre Filter Depth", 50).ShortName("TimbreFilter").Build(),

		volume: param.GainParameter(ParamVolume, "Volume").Default(-6).ShortName("Vol").Build(),
	}
}

func (p *params) all() []*param.Parameter {
	return []*param.Parameter{
		p.shape, p.width,
		p.cutoff, p.resonance, p.filterMode, p.tracking, p.filterEnv,
		p.attack, p.decay, p.sustain, p.release, p.velocity,
		p.mgRate, p.mgDelay, p.mgPitch, p.mgFilter,
		p.wheel, p.wheelRate, p.wheelPitch, p.wheelFilter,
		p.pitchBend, p.timbre, p.timbreFilter,
		p.volume,
	}
}
