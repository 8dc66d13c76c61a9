// Package ffmpeg is the boundary to the external command-line transcoder.
//
// It covers:
//   - Binary discovery across bundled, well-known, and PATH locations,
//     with a short-TTL cache for negative lookups
//   - Capability introspection (-encoders, -muxers, per-muxer help) cached
//     as one immutable snapshot per binary path
//   - Deterministic argument construction for the standard conversion
//     pipeline and the palette-based animated pipeline
//   - Cancellable subprocess execution with machine-readable progress
//     parsing from the -progress key=value stream
//
// The external tool is required to exit 0 for success; non-zero exits are
// surfaced as *ExecError with the captured diagnostic output.
package ffmpeg
