package ffmpeg

import (
	"strconv"
	"strings"
)

// ProgressParser converts the external tool's machine-readable progress
// stream (newline-delimited key=value pairs requested with -progress) into a
// 0..1 completion fraction. Within one run the reported fraction is
// non-decreasing; the explicit progress=end marker forces it to 1.
//
// The total duration is taken from the constructor when the caller probed it,
// otherwise from a "Duration: HH:MM:SS.cc" banner line sniffed off the
// diagnostic output before the progress stream begins (first seen wins).
type ProgressParser struct {
	durationUS int64
	fraction   float64
	ended      bool
}

// NewProgressParser creates a parser. durationUS may be 0 when the source
// duration is unknown; the parser then reports 0 until a duration banner is
// seen or the stream ends.
func NewProgressParser(durationUS int64) *ProgressParser {
	return &ProgressParser{durationUS: durationUS}
}

// Fraction returns the current completion fraction in [0,1].
func (p *ProgressParser) Fraction() float64 {
	return p.fraction
}

// Ended reports whether the explicit end-of-stream marker was seen.
func (p *ProgressParser) Ended() bool {
	return p.ended
}

// ParseLine consumes one line from either the progress stream or the merged
// diagnostic output and returns the updated fraction plus whether the line
// changed it.
func (p *ProgressParser) ParseLine(line string) (float64, bool) {
	line = strings.TrimSpace(line)

	if p.durationUS <= 0 {
		if us, ok := sniffDuration(line); ok {
			p.durationUS = us
		}
	}

	key, value, found := strings.Cut(line, "=")
	if !found {
		return p.fraction, false
	}
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	switch key {
	case "progress":
		if value == "end" {
			p.ended = true
			return p.set(1), true
		}
		return p.fraction, false
	case "out_time_us", "out_time_ms":
		// out_time_ms has carried microseconds since the key was added;
		// both fields hold the same value.
		us, err := strconv.ParseInt(value, 10, 64)
		if err != nil || us < 0 {
			return p.fraction, false
		}
		return p.advance(us)
	case "out_time":
		us := parseClock(value)
		if us < 0 {
			return p.fraction, false
		}
		return p.advance(us)
	default:
		return p.fraction, false
	}
}

func (p *ProgressParser) advance(elapsedUS int64) (float64, bool) {
	if p.durationUS <= 0 {
		return p.fraction, false
	}
	return p.set(float64(elapsedUS) / float64(p.durationUS)), true
}

// set clamps to [0,1] and never moves backwards.
func (p *ProgressParser) set(fraction float64) float64 {
	if fraction > 1 {
		fraction = 1
	}
	if fraction > p.fraction {
		p.fraction = fraction
	}
	return p.fraction
}

// parseClock parses HH:MM:SS(.fraction) into microseconds, or -1 when the
// value is malformed or the tool reported N/A.
func parseClock(value string) int64 {
	if value == "" || value == "N/A" {
		return -1
	}
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return -1
	}

	hours, err1 := strconv.ParseInt(parts[0], 10, 64)
	mins, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil || hours < 0 || mins < 0 {
		return -1
	}

	secStr, fracStr, _ := strings.Cut(parts[2], ".")
	secs, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil || secs < 0 {
		return -1
	}

	var micros int64
	if fracStr != "" {
		for len(fracStr) < 6 {
			fracStr += "0"
		}
		fracStr = fracStr[:6]
		micros, err = strconv.ParseInt(fracStr, 10, 64)
		if err != nil {
			return -1
		}
	}

	return hours*3600_000_000 + mins*60_000_000 + secs*1_000_000 + micros
}

// sniffDuration extracts the total duration from a pre-stream banner line of
// the form "Duration: 00:01:23.45, start: ...".
func sniffDuration(line string) (int64, bool) {
	const marker = "Duration:"
	idx := strings.Index(line, marker)
	if idx < 0 {
		return 0, false
	}
	rest := strings.TrimSpace(line[idx+len(marker):])
	if end := strings.IndexByte(rest, ','); end >= 0 {
		rest = rest[:end]
	}
	us := parseClock(strings.TrimSpace(rest))
	if us <= 0 {
		return 0, false
	}
	return us, true
}
