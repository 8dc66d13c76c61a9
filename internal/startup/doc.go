// Package startup assembles the conversion engine at process start:
// configuration, directories, backend discovery, and the settings store. It
// also carries build-time version information injected via -ldflags.
package startup
