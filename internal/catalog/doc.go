// Package catalog describes the output formats and encoders the engine can
// target. It merges three sources: formats the primary transcoder handles
// natively, a static table of well-known formats that require the external
// tool, and formats discovered by introspecting the external tool's
// compiled-in muxer list. The merged result is cached per external binary
// path for the process lifetime.
package catalog
