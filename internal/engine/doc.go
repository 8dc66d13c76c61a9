// Package engine orchestrates conversion jobs. Each job analyzes its source,
// validates the requested settings, attempts the primary transcoder, and
// falls back to the external tool only when the primary backend reports the
// target format out of reach. Exactly one backend runs at a time per job;
// independent jobs may run concurrently.
package engine
