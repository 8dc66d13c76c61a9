package ffmpeg

import (
	"reflect"
	"testing"
)

func TestLineDecoderAdd(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   [][]string
	}{
		{
			name:   "single complete line",
			chunks: []string{"out_time=00:00:01.00\n"},
			want:   [][]string{{"out_time=00:00:01.00"}},
		},
		{
			name:   "line split across chunks",
			chunks: []string{"progress=", "continue\n"},
			want:   [][]string{nil, {"progress=continue"}},
		},
		{
			name:   "multiple lines in one chunk",
			chunks: []string{"a=1\nb=2\nc=3\n"},
			want:   [][]string{{"a=1", "b=2", "c=3"}},
		},
		{
			name:   "crlf endings stripped",
			chunks: []string{"frame=10\r\nfps=24\r\n"},
			want:   [][]string{{"frame=10", "fps=24"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &LineDecoder{}
			for i, chunk := range tt.chunks {
				got := d.Add([]byte(chunk))
				if !reflect.DeepEqual(got, tt.want[i]) {
					t.Errorf("chunk %d: Add() = %v, want %v", i, got, tt.want[i])
				}
			}
		})
	}
}

func TestLineDecoderFlush(t *testing.T) {
	d := &LineDecoder{}
	d.Add([]byte("complete\npartial"))

	if got := d.Flush(); got != "partial" {
		t.Errorf("Flush() = %q, want %q", got, "partial")
	}
	if got := d.Flush(); got != "" {
		t.Errorf("second Flush() = %q, want empty", got)
	}
}
