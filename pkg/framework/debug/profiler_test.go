package debug

import (
	"math"
	"strings"
	"testing"
	"time"
)

func TestProfiler(t *testing.T) {
	t.Run("BasicProfiling", func(t *testing.T) {
		p := NewProfiler(100)

		stop := p.Start("test")
		time.Sleep(10 * time.Millisecond)
		stop()

		m, exists := p.GetMeasurement("test")
		if !exists {
			t.Fatal("Measurement not found")
		}
		if m.Count() != 1 {
			t.Errorf("Expected count 1, got %d", m.Count())
		}
		if m.lastTime < 10*time.Millisecond {
			t.Error("Timing seems too short")
		}
	})

	t.Run("Statistics", func(t *testing.T) {
		p := NewProfiler(100)
		for _, ms := range []int{4, 1, 3, 2, 5} {
			p.Record("stats", time.Duration(ms)*time.Millisecond)
		}

		m, _ := p.GetMeasurement("stats")
		if m.Count() != 5 {
			t.Errorf("Expected count 5, got %d", m.Count())
		}
		if m.Average() != 3*time.Millisecond {
			t.Errorf("Expected average 3ms, got %v", m.Average())
		}
		if m.minTime != time.Millisecond || m.Max() != 5*time.Millisecond {
			t.Errorf("Expected min 1ms max 5ms, got %v %v", m.minTime, m.Max())
		}
		if m.Percentile(50) != 3*time.Millisecond {
			t.Errorf("Expected median 3ms, got %v", m.Percentile(50))
		}
		if m.Percentile(100) != 5*time.Millisecond {
			t.Errorf("Expected p100 5ms, got %v", m.Percentile(100))
		}
	})

	t.Run("SampleWindow", func(t *testing.T) {
		p := NewProfiler(3)
		for ms := 1; ms <= 6; ms++ {
			p.Record("window", time.Duration(ms)*time.Millisecond)
		}
		m, _ := p.GetMeasurement("window")
		if m.Percentile(0) != 4*time.Millisecond {
			t.Errorf("Only the last 3 samples should be kept, got minimum %v", m.Percentile(0))
		}
	})

	t.Run("TimeFunction", func(t *testing.T) {
		p := NewProfiler(100)

		called := false
		p.Time("function", func() {
			called = true
		})

		if !called {
			t.Error("Function not called")
		}
		if m, exists := p.GetMeasurement("function"); !exists || m.Count() != 1 {
			t.Error("Expected one measurement")
		}
	})

	t.Run("Disabled", func(t *testing.T) {
		p := NewProfiler(100)
		p.SetEnabled(false)

		stop := p.Start("disabled")
		stop()
		p.Record("disabled", time.Millisecond)

		if _, exists := p.GetMeasurement("disabled"); exists {
			t.Error("Measurement should not exist when disabled")
		}
	})

	t.Run("Report", func(t *testing.T) {
		p := NewProfiler(100)
		p.Record("task2", 2*time.Millisecond)
		p.Record("task1", time.Millisecond)

		report := p.Report()
		if strings.Index(report, "task1") > strings.Index(report, "task2") {
			t.Error("Report should list sections in name order")
		}
		if !strings.Contains(report, "Count:") {
			t.Error("Report missing count")
		}

		p.Reset()
		if len(p.Names()) != 0 {
			t.Error("Measurements not cleared")
		}
	})
}

func TestRenderProfiler(t *testing.T) {
	r := NewRenderProfiler(48000)

	// 480 frames is 10ms of audio
	r.RecordRender(5*time.Millisecond, 480)
	r.RecordRender(1*time.Millisecond, 480)

	average, peak := r.Load()
	if math.Abs(average-30) > 0.01 {
		t.Errorf("Expected 30%% average load, got %.2f", average)
	}
	if math.Abs(peak-50) > 0.01 {
		t.Errorf("Expected 50%% peak load, got %.2f", peak)
	}

	report := r.RenderReport()
	for _, want := range []string{"48000 Hz", "Frames:       960", "Load:", RenderSection} {
		if !strings.Contains(report, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func BenchmarkProfiler(b *testing.B) {
	p := NewProfiler(1000)
	for i := 0; i < b.N; i++ {
		p.Record("bench", time.Microsecond)
	}
}
