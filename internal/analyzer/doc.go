// Package analyzer inspects a source file and reports which output formats
// are achievable with the currently available backends. Analysis is a pure
// read with no side effects; reports are keyed to the canonical source path
// so callers can discard results that arrive after the source changed.
package analyzer
