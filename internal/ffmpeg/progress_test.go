package ffmpeg

import (
	"testing"
)

func TestProgressParserOutTime(t *testing.T) {
	p := NewProgressParser(10_000_000) // 10 seconds

	fraction, changed := p.ParseLine("out_time=00:00:05.000000")
	if !changed || fraction != 0.5 {
		t.Errorf("ParseLine(out_time 5s) = (%v, %v), want (0.5, true)", fraction, changed)
	}

	fraction, _ = p.ParseLine("out_time_us=7500000")
	if fraction != 0.75 {
		t.Errorf("ParseLine(out_time_us 7.5s) = %v, want 0.75", fraction)
	}
}

func TestProgressParserMonotonic(t *testing.T) {
	p := NewProgressParser(10_000_000)

	p.ParseLine("out_time_us=8000000")
	fraction, _ := p.ParseLine("out_time_us=2000000")
	if fraction != 0.8 {
		t.Errorf("fraction regressed to %v, want 0.8", fraction)
	}
}

func TestProgressParserClampsOverrun(t *testing.T) {
	p := NewProgressParser(10_000_000)

	fraction, _ := p.ParseLine("out_time_us=15000000")
	if fraction != 1 {
		t.Errorf("overrun fraction = %v, want clamped to 1", fraction)
	}
}

func TestProgressParserEndMarker(t *testing.T) {
	p := NewProgressParser(10_000_000)

	p.ParseLine("out_time_us=3000000")
	fraction, changed := p.ParseLine("progress=end")
	if !changed || fraction != 1 {
		t.Errorf("ParseLine(progress=end) = (%v, %v), want (1, true)", fraction, changed)
	}
	if !p.Ended() {
		t.Error("Ended() = false after progress=end")
	}
}

func TestProgressParserSniffsDuration(t *testing.T) {
	p := NewProgressParser(0)

	// Without a duration, out_time ticks cannot produce a fraction.
	if fraction, changed := p.ParseLine("out_time_us=1000000"); changed || fraction != 0 {
		t.Errorf("ParseLine before duration = (%v, %v), want (0, false)", fraction, changed)
	}

	p.ParseLine("  Duration: 00:00:20.00, start: 0.000000, bitrate: 1000 kb/s")
	fraction, changed := p.ParseLine("out_time_us=10000000")
	if !changed || fraction != 0.5 {
		t.Errorf("ParseLine after sniffed duration = (%v, %v), want (0.5, true)", fraction, changed)
	}
}

func TestProgressParserIgnoresJunk(t *testing.T) {
	p := NewProgressParser(10_000_000)

	for _, line := range []string{
		"",
		"frame=120",
		"out_time=N/A",
		"out_time=garbage",
		"out_time_ms=-5",
		"speed=1.5x",
	} {
		if fraction, changed := p.ParseLine(line); changed || fraction != 0 {
			t.Errorf("ParseLine(%q) = (%v, %v), want (0, false)", line, fraction, changed)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"00:00:01.000000", 1_000_000},
		{"00:01:30.5", 90_500_000},
		{"01:00:00", 3_600_000_000},
		{"00:00:00.123456789", 123_456},
		{"N/A", -1},
		{"", -1},
		{"12:34", -1},
		{"aa:bb:cc", -1},
	}

	for _, tt := range tests {
		if got := parseClock(tt.in); got != tt.want {
			t.Errorf("parseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
