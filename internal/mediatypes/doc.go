// Package mediatypes classifies source files into the media kinds the
// conversion engine understands: video, audio, and image.
package mediatypes
