package ffmpeg

import (
	"bytes"
	"strings"
)

// LineDecoder accumulates raw subprocess output and yields complete lines.
// The trailing partial line, if any, must be drained with Flush once the
// process has exited. It is reused for both the progress stream and
// diagnostic output parsing.
type LineDecoder struct {
	buf []byte
}

// Add appends raw bytes and returns all newly completed lines, with line
// endings stripped.
func (d *LineDecoder) Add(p []byte) []string {
	d.buf = append(d.buf, p...)

	var lines []string
	for {
		idx := bytes.IndexByte(d.buf, '\n')
		if idx < 0 {
			break
		}
		line := strings.TrimRight(string(d.buf[:idx]), "\r")
		d.buf = d.buf[idx+1:]
		lines = append(lines, line)
	}
	return lines
}

// Flush returns any buffered partial line and resets the decoder.
func (d *LineDecoder) Flush() string {
	line := strings.TrimRight(string(d.buf), "\r")
	d.buf = nil
	return line
}
