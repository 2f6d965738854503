package debug

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler collects timing statistics for named sections.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	enabled      atomic.Bool
	maxSamples   int
}

// Measurement holds timing statistics for one section. The most recent
// maxSamples timings are kept for percentiles.
type Measurement struct {
	count     uint64
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	lastTime  time.Duration
	samples   []time.Duration
	next      int
}

func NewProfiler(maxSamples int) *Profiler {
	p := &Profiler{
		measurements: make(map[string]*Measurement),
		maxSamples:   max(maxSamples, 1),
	}
	p.enabled.Store(true)
	return p
}

func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

func (p *Profiler) IsEnabled() bool {
	return p.enabled.Load()
}

// Start begins timing a section; call the returned func to stop.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Time measures fn.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

// Record adds one timing to the named section.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	if !p.enabled.Load() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	m, exists := p.measurements[name]
	if !exists {
		m = &Measurement{
			minTime: elapsed,
			maxTime: elapsed,
			samples: make([]time.Duration, 0, p.maxSamples),
		}
		p.measurements[name] = m
	}

	m.count++
	m.totalTime += elapsed
	m.lastTime = elapsed
	m.minTime = min(m.minTime, elapsed)
	m.maxTime = max(m.maxTime, elapsed)

	if len(m.samples) < cap(m.samples) {
		m.samples = append(m.samples, elapsed)
	} else {
		m.samples[m.next] = elapsed
		m.next = (m.next + 1) % len(m.samples)
	}
}

// GetMeasurement returns a copy of the named section's statistics.
func (p *Profiler) GetMeasurement(name string) (Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, exists := p.measurements[name]
	if !exists {
		return Measurement{}, false
	}
	c := *m
	c.samples = slices.Clone(m.samples)
	return c, true
}

// Names returns the recorded section names, sorted.
func (p *Profiler) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.measurements))
	for name := range p.measurements {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.measurements = make(map[string]*Measurement)
}

func (p *Profiler) Report() string {
	names := p.Names()
	if len(names) == 0 {
		return "No measurements recorded"
	}

	var sb strings.Builder
	sb.WriteString("Performance Report:\n")
	sb.WriteString("==================\n\n")

	for _, name := range names {
		m, _ := p.GetMeasurement(name)
		fmt.Fprintf(&sb, "%s:\n", name)
		fmt.Fprintf(&sb, "  Count:   %d\n", m.count)
		fmt.Fprintf(&sb, "  Total:   %v\n", m.totalTime)
		fmt.Fprintf(&sb, "  Average: %v\n", m.Average())
		fmt.Fprintf(&sb, "  Min:     %v\n", m.minTime)
		fmt.Fprintf(&sb, "  Max:     %v\n", m.maxTime)
		fmt.Fprintf(&sb, "  P99:     %v\n", m.Percentile(99))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Measurement) Count() uint64 {
	return m.count
}

func (m Measurement) Max() time.Duration {
	return m.maxTime
}

func (m Measurement) Average() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.totalTime / time.Duration(m.count)
}

// Percentile returns the p-th percentile (0-100) of the kept samples.
func (m Measurement) Percentile(p float64) time.Duration {
	if len(m.samples) == 0 {
		return 0
	}
	sorted := slices.Clone(m.samples)
	slices.Sort(sorted)
	index := int(float64(len(sorted)-1) * p / 100.0)
	return sorted[index]
}

// RenderSection is the section RenderProfiler records under.
const RenderSection = "render"

// RenderProfiler tracks how much of each buffer's real-time budget the
// render took.
type RenderProfiler struct {
	*Profiler
	sampleRate float64

	mu         sync.Mutex
	frames     uint64
	renderTime time.Duration
	peakLoad   float64
}

func NewRenderProfiler(sampleRate float64) *RenderProfiler {
	return &RenderProfiler{
		Profiler:   NewProfiler(1000),
		sampleRate: sampleRate,
	}
}

// RecordRender adds a render of numFrames that took elapsed.
func (r *RenderProfiler) RecordRender(elapsed time.Duration, numFrames int) {
	if !r.IsEnabled() || numFrames <= 0 {
		return
	}
	r.Record(RenderSection, elapsed)

	budget := time.Duration(float64(numFrames) / r.sampleRate * float64(time.Second))
	r.mu.Lock()
	r.frames += uint64(numFrames)
	r.renderTime += elapsed
	r.peakLoad = max(r.peakLoad, float64(elapsed)/float64(budget)*100)
	r.mu.Unlock()
}

// Load returns the average and peak render time as a percentage of the
// audio duration rendered.
func (r *RenderProfiler) Load() (average, peak float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frames == 0 {
		return 0, 0
	}
	audio := time.Duration(float64(r.frames) / r.sampleRate * float64(time.Second))
	return float64(r.renderTime) / float64(audio) * 100, r.peakLoad
}

func (r *RenderProfiler) RenderReport() string {
	average, peak := r.Load()
	var sb strings.Builder
	sb.WriteString(r.Report())
	sb.WriteString("Render Stats:\n")
	fmt.Fprintf(&sb, "  Sample Rate:  %.0f Hz\n", r.sampleRate)
	r.mu.Lock()
	fmt.Fprintf(&sb, "  Frames:       %d\n", r.frames)
	r.mu.Unlock()
	fmt.Fprintf(&sb, "  Load:         %.2f%% (peak %.2f%%)\n", average, peak)
	return sb.String()
}
