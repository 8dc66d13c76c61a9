package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind represents the media kind of a source file.
type Kind string

const (
	// KindVideo represents a video file.
	KindVideo Kind = "video"
	// KindAudio represents an audio file.
	KindAudio Kind = "audio"
	// KindImage represents an image file.
	KindImage Kind = "image"
	// KindOther represents an unknown or unsupported file type.
	KindOther Kind = "other"
)

// VideoExtensions maps file extensions to whether they are recognized video sources.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".avi":  true,
	".wmv":  true,
	".flv":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
	".mts":  true,
	".m2ts": true,
	".ogv":  true,
}

// AudioExtensions maps file extensions to whether they are recognized audio sources.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".wav":  true,
	".aif":  true,
	".aiff": true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".wma":  true,
	".caf":  true,
}

// ImageExtensions maps file extensions to whether they are recognized image sources.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
	".avif": true,
	".ico":  true,
}

// KindForExtension returns the media Kind for a file extension.
// The extension should include the leading dot; case is ignored.
func KindForExtension(ext string) Kind {
	ext = strings.ToLower(ext)
	switch {
	case VideoExtensions[ext]:
		return KindVideo
	case AudioExtensions[ext]:
		return KindAudio
	case ImageExtensions[ext]:
		return KindImage
	default:
		return KindOther
	}
}

// KindForPath returns the media Kind for a file path based on its extension.
func KindForPath(path string) Kind {
	return KindForExtension(filepath.Ext(path))
}

// CanonicalPath returns the standardized form of a source path used as its
// stable identity key: absolute, symlink-free where resolvable, and cleaned.
// If the path cannot be resolved (e.g. the file was removed mid-analysis),
// the cleaned absolute form is returned so lookups stay deterministic.
func CanonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return filepath.Clean(abs)
}
