// Package output places finished conversions. It computes collision-free
// destination names and moves working files into place, falling back to
// copy-and-delete when a rename crosses filesystems.
package output
