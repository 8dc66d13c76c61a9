// Package config loads engine configuration from an optional config file and
// MEDIACONV_-prefixed environment variables, with sensible defaults for a
// desktop installation.
package config
