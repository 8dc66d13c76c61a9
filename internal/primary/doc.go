// Package primary defines the boundary to the first-choice transcoding
// backend and ships an in-process implementation for images built on libvips
// with a pure-Go fallback.
//
// Video and audio primaries are platform frameworks and are injected by the
// shell on platforms that have one; the engine treats a nil primary as
// "nothing readable natively" and routes those jobs to the external tool.
package primary
