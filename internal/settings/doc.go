// Package settings persists per-source conversion settings. Every source
// file keeps one record keyed by its canonical path, grouped by media kind;
// each change rewrites the whole map for that kind into sqlite. Records for
// sources no longer selected are kept indefinitely, trading storage for
// simplicity.
package settings
