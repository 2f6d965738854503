// Command polyplay renders, plays and inspects the polyvoice instruments.
//
//	polyplay render -instrument polysaw -o out.f32 score.lua
//	polyplay play -instrument sine -backend portaudio score.lua
//	polyplay live -instrument polysaw -set Cutoff=90
//	polyplay params -instrument polysaw -set Shape=Pulse -save pulse.preset
//	polyplay render -preset pulse.preset -o out.f32 score.lua
//
// Rendered files are raw interleaved little-endian float32 frames.
package main

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/justyntemme/polyvoice/pkg/framework/debug"
	"github.com/justyntemme/polyvoice/pkg/framework/host"
	"github.com/justyntemme/polyvoice/pkg/framework/plugin"
	"github.com/justyntemme/polyvoice/pkg/framework/process"
	"github.com/justyntemme/polyvoice/pkg/framework/state"
	"github.com/justyntemme/polyvoice/pkg/instrument"
	"github.com/justyntemme/polyvoice/pkg/midi"
)

var ErrUsage = errors.New("usage")

const usage = `usage: polyplay <command> [flags] [score.lua]

commands:
  render   render a score to a raw float32 file
  play     play a score through an audio backend
  live     play from the terminal keyboard
  params   list an instrument's parameters

run "polyplay <command> -h" for the flags of a command`

// settingsFlag collects repeated -set name=value flags.
type settingsFlag []Setting

func (s *settingsFlag) String() string {
	parts := make([]string, len(*s))
	for i, setting := range *s {
		parts[i] = setting.Name + "=" + setting.Value
	}
	return strings.Join(parts, ",")
}

func (s *settingsFlag) Set(v string) error {
	name, value, ok := strings.Cut(v, "=")
	if !ok || name == "" {
		return fmt.Errorf("%q is not name=value", v)
	}
	*s = append(*s, Setting{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	return nil
}

type options struct {
	instrument string
	backend    string
	output     string
	logFile    string
	logLevel   string
	preset     string
	save       string
	rate       float64
	buffer     int
	channels   int
	seconds    float64
	verbose    bool
	analyze    bool
	settings   settingsFlag
}

func (o *options) environment() process.Environment {
	return process.Environment{
		SampleRate:        o.rate,
		MaxSamplesPerCall: o.buffer,
		Channels:          o.channels,
	}
}

func newFlagSet(name string, o *options) *flag.FlagSet {
	fs := flag.NewFlagSet("polyplay "+name, flag.ContinueOnError)
	fs.StringVar(&o.instrument, "instrument", "polysaw", fmt.Sprintf("instrument, one of %v", instrument.Names()))
	fs.Float64Var(&o.rate, "rate", 48000, "sample rate in Hz")
	fs.IntVar(&o.buffer, "buffer", 512, "maximum frames per processing call")
	fs.IntVar(&o.channels, "channels", 2, "output channels")
	fs.Var(&o.settings, "set", "parameter `name=value`, may be repeated")
	fs.BoolVar(&o.verbose, "v", false, "log debug messages, same as -level debug")
	fs.StringVar(&o.logLevel, "level", "info", "log `level`: debug, info, warn, error or off")
	fs.StringVar(&o.logFile, "log", "", "append log messages to `file`")
	fs.StringVar(&o.preset, "preset", "", "load parameter values from a preset `file` before -set")

	switch name {
	case "render":
		fs.StringVar(&o.output, "o", "", "output `file`, - for stdout")
		fs.BoolVar(&o.analyze, "analyze", false, "print level and spectrum statistics of channel 0")
		fs.Float64Var(&o.seconds, "seconds", 0, "render length, overrides the score")
	case "play":
		fs.StringVar(&o.backend, "backend", "oto", "audio backend, oto or portaudio")
		fs.Float64Var(&o.seconds, "seconds", 0, "play length, overrides the score")
	case "live":
		fs.StringVar(&o.backend, "backend", "oto", "audio backend, oto or portaudio")
	case "params":
		fs.StringVar(&o.save, "save", "", "write the resulting parameter values to a preset `file`")
	}
	return fs
}

func main() {
	debug.SetPrefix("polyplay")
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			fmt.Fprintln(os.Stderr, usage)
		}
		debug.Error("%v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	commands := map[string]func(*options, []string) error{
		"render": render,
		"play":   play,
		"live":   live,
		"params": params,
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	opts := &options{}
	fs := newFlagSet(args[0], opts)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	closeLog, err := setupLogging(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	return cmd(opts, fs.Args())
}

func setupLogging(opts *options) (func(), error) {
	level, err := debug.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if opts.verbose {
		level = debug.LogLevelDebug
	}
	debug.SetLevel(level)

	if opts.logFile == "" {
		return func() {}, nil
	}

	l, closer, err := debug.NewFileLogger(opts.logFile, "polyplay", debug.DefaultFlags)
	if err != nil {
		return nil, err
	}
	l.SetLevel(debug.Default().Level())
	prev := debug.SetDefault(l)
	return func() {
		debug.SetDefault(prev)
		closer.Close()
	}, nil
}

// newSynth constructs the named instrument, loads the preset if one is
// given and applies settings in order, so later settings win.
func newSynth(name, preset string, settings ...[]Setting) (plugin.Synth, error) {
	construct, err := instrument.Lookup(name)
	if err != nil {
		return nil, err
	}
	synth := construct()

	if preset != "" {
		f, err := os.Open(preset)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := presets(synth).Load(bufio.NewReader(f)); err != nil {
			return nil, fmt.Errorf("%s: %w", preset, err)
		}
		debug.Debug("%s: loaded preset %s", name, preset)
	}

	for _, list := range settings {
		for _, s := range list {
			if err := synth.Parameters().Set(s.Name, s.Value); err != nil {
				return nil, fmt.Errorf("set %s=%s: %w", s.Name, s.Value, err)
			}
			debug.Debug("%s: %s = %s", name, s.Name, s.Value)
		}
	}
	return synth, nil
}

func presets(synth plugin.Synth) *state.Manager {
	return state.NewManager(synth.Info().ID, synth.Parameters())
}

func savePreset(path string, synth plugin.Synth) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := presets(synth).Save(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func scoreArg(args []string, rate float64) (*Score, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: expected one score file, got %d arguments", ErrUsage, len(args))
	}
	score, err := LoadScore(args[0], rate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", args[0], err)
	}
	debug.Debug("%s: %d events, %d frames", args[0], len(score.Events), score.Length)
	return score, nil
}

// prepare loads the score and builds a driver whose queue holds its events.
func prepare(opts *options, args []string) (*Score, *host.Driver, error) {
	score, err := scoreArg(args, opts.rate)
	if err != nil {
		return nil, nil, err
	}
	if opts.seconds > 0 {
		score.Length = int64(opts.seconds * opts.rate)
	}

	synth, err := newSynth(opts.instrument, opts.preset, score.Settings, opts.settings)
	if err != nil {
		return nil, nil, err
	}

	queue := midi.NewEventQueue()
	queue.AddMultiple(score.Events)
	d, err := host.NewDriver(synth, opts.environment(), queue)
	if err != nil {
		return nil, nil, err
	}
	return score, d, nil
}

func render(opts *options, args []string) error {
	if opts.output == "" && !opts.analyze {
		return fmt.Errorf("%w: render needs -o or -analyze", ErrUsage)
	}
	score, d, err := prepare(opts, args)
	if err != nil {
		return err
	}

	w := io.Discard
	if opts.output == "-" {
		w = os.Stdout
	} else if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriter(w)

	env := d.Environment()
	frames := make([]float32, env.MaxSamplesPerCall*env.Channels)
	var mono []float32
	if opts.analyze {
		mono = make([]float32, 0, score.Length)
	}

	for pos := int64(0); pos < score.Length; {
		n := int(min(score.Length-pos, int64(env.MaxSamplesPerCall)))
		buf := frames[:n*env.Channels]
		d.Render(buf)
		if err := binary.Write(bw, binary.LittleEndian, buf); err != nil {
			return fmt.Errorf("write %s: %w", opts.output, err)
		}
		if opts.analyze {
			for i := 0; i < n; i++ {
				mono = append(mono, buf[i*env.Channels])
			}
		}
		pos += int64(n)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	debug.Info("rendered %.2f s: %s", float64(score.Length)/env.SampleRate, d.Profiler().RenderReport())

	if opts.analyze {
		report, err := analyze(mono, env.SampleRate)
		if err != nil {
			return err
		}
		report.Write(os.Stderr)
	}
	return nil
}

func startBackend(name string, d *host.Driver) (backend, error) {
	b, err := newBackend(name)
	if err != nil {
		return nil, err
	}
	if err := b.Start(d); err != nil {
		return nil, err
	}
	debug.Info("playing through %s", name)
	return b, nil
}

func play(opts *options, args []string) error {
	score, d, err := prepare(opts, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b, err := startBackend(opts.backend, d)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
wait:
	for d.Position() < score.Length {
		select {
		case <-ctx.Done():
			break wait
		case <-ticker.C:
		}
	}

	d.Stop()
	debug.WarnIf(d.LateEvents() > 0, "%d events arrived late", d.LateEvents())
	debug.Debug("%s", d.Profiler().RenderReport())
	return b.Close()
}

func live(opts *options, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: live takes no arguments", ErrUsage)
	}
	synth, err := newSynth(opts.instrument, opts.preset, opts.settings)
	if err != nil {
		return err
	}
	queue := midi.NewEventQueue()
	d, err := host.NewDriver(synth, opts.environment(), queue)
	if err != nil {
		return err
	}

	b, err := startBackend(opts.backend, d)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "keys %s play, z/x octave, space releases, q quits\r\n", keyRow)
	err = readKeys(os.Stdin, func(events []midi.Data) {
		now := d.Position()
		for _, e := range events {
			queue.Add(midi.TimedEvent{Time: now, Data: e})
		}
	})

	d.Stop()
	debug.Debug("%s", d.Profiler().RenderReport())
	return errors.Join(err, b.Close())
}

func params(opts *options, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: params takes no arguments", ErrUsage)
	}
	synth, err := newSynth(opts.instrument, opts.preset, opts.settings)
	if err != nil {
		return err
	}
	if opts.save != "" {
		if err := savePreset(opts.save, synth); err != nil {
			return err
		}
		debug.Info("saved %s preset to %s", synth.Info().Name, opts.save)
	}
	return writeParams(os.Stdout, synth)
}

func writeParams(w io.Writer, synth plugin.Synth) error {
	info := synth.Info()
	fmt.Fprintf(w, "%s, %d voices\n\n", info, info.Voices)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSHORT\tVALUE\tDEFAULT\tRANGE")
	for _, p := range synth.Parameters().All() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%g..%g %s\n",
			p.ID, p.Name, p.ShortName,
			p.FormatValue(p.GetValue()), p.FormatValue(p.DefaultValue),
			p.Min, p.Max, p.Unit)
	}
	return tw.Flush()
}
