// Package workers sizes worker pools for analysis and conversion work,
// respecting container CPU limits and backing off when system memory is low.
package workers
