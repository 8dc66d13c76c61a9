package primary

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // BMP decode support
	_ "golang.org/x/image/tiff" // TIFF decode support
	_ "golang.org/x/image/webp" // WebP decode support

	"media-convert/internal/logging"
)

// imageFormats maps the catalog format IDs the image exporter can produce to
// the extension imaging uses for encoder selection.
var imageFormats = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"webp": "webp",
	"gif":  "gif",
	"tiff": "tiff",
	"bmp":  "bmp",
}

// ImageExporter converts images in-process: libvips when initialized, the
// pure-Go imaging stack otherwise. Animated sources are reduced to their
// first frame; preserving animation is the external tool's job.
type ImageExporter struct{}

// NewImageExporter creates an ImageExporter.
func NewImageExporter() *ImageExporter {
	return &ImageExporter{}
}

// CanRead reports whether the source decodes as an image.
func (e *ImageExporter) CanRead(ctx context.Context, path string) bool {
	_, _, err := decodeConfig(path)
	if err == nil {
		return true
	}
	if vipsReady() {
		ref, verr := vips.LoadImageFromFile(path, vips.NewImportParams())
		if verr == nil {
			ref.Close()
			return true
		}
	}
	return false
}

// CompatiblePresets returns the single default preset when the exporter can
// write the format, an empty list when it cannot, and an error wrapping
// ErrUnsupported when the source itself is unreadable.
func (e *ImageExporter) CompatiblePresets(ctx context.Context, path, formatID string) ([]string, error) {
	if !e.CanRead(ctx, path) {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), ErrUnsupported)
	}
	if _, ok := imageFormats[strings.ToLower(formatID)]; !ok {
		return nil, nil
	}
	return []string{"default"}, nil
}

// Export converts the source to the requested format. Wraps ErrUnsupported
// for formats outside the exporter's reach so the engine may fall back.
func (e *ImageExporter) Export(ctx context.Context, req ExportRequest, onProgress func(float64)) error {
	ext, ok := imageFormats[strings.ToLower(req.FormatID)]
	if !ok {
		return fmt.Errorf("image format %q: %w", req.FormatID, ErrUnsupported)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if vipsReady() {
		err := e.exportWithVips(req, ext, onProgress)
		if err == nil {
			return nil
		}
		logging.Debug("vips export of %s failed, using fallback: %v", req.SourcePath, err)
	}

	return e.exportWithImaging(ctx, req, ext, onProgress)
}

func (e *ImageExporter) exportWithVips(req ExportRequest, ext string, onProgress func(float64)) error {
	ref, err := vips.LoadImageFromFile(req.SourcePath, vips.NewImportParams())
	if err != nil {
		return fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	if onProgress != nil {
		onProgress(0.25)
	}

	if req.Width > 0 && req.Height > 0 {
		if err := ref.Thumbnail(req.Width, req.Height, vips.InterestingNone); err != nil {
			return fmt.Errorf("vips resize: %w", err)
		}
	}

	if onProgress != nil {
		onProgress(0.5)
	}

	var data []byte
	switch ext {
	case "jpg":
		params := vips.NewJpegExportParams()
		if req.Quality > 0 {
			params.Quality = req.Quality
		}
		data, _, err = ref.ExportJpeg(params)
	case "png":
		params := vips.NewPngExportParams()
		if req.Compression >= 0 {
			params.Compression = req.Compression
		}
		data, _, err = ref.ExportPng(params)
	case "webp":
		params := vips.NewWebpExportParams()
		if req.Quality > 0 {
			params.Quality = req.Quality
		}
		data, _, err = ref.ExportWebp(params)
	case "gif":
		params := vips.NewGifExportParams()
		if req.Quality > 0 {
			params.Quality = req.Quality
		}
		data, _, err = ref.ExportGIF(params)
	default:
		return fmt.Errorf("vips cannot write %s", ext)
	}
	if err != nil {
		return fmt.Errorf("vips export: %w", err)
	}

	if err := os.WriteFile(req.OutputPath, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if onProgress != nil {
		onProgress(1)
	}
	return nil
}

func (e *ImageExporter) exportWithImaging(ctx context.Context, req ExportRequest, ext string, onProgress func(float64)) error {
	img, err := imaging.Open(req.SourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(req.SourcePath), err)
	}

	if onProgress != nil {
		onProgress(0.25)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if req.Width > 0 && req.Height > 0 {
		img = imaging.Resize(img, req.Width, req.Height, imaging.Lanczos)
	}

	if onProgress != nil {
		onProgress(0.5)
	}

	out, err := os.Create(req.OutputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}

	switch ext {
	case "jpg":
		quality := req.Quality
		if quality <= 0 {
			quality = 85
		}
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: quality})
	case "png":
		encoder := &png.Encoder{CompressionLevel: png.DefaultCompression}
		if req.Compression == 0 {
			encoder.CompressionLevel = png.NoCompression
		} else if req.Compression >= 7 {
			encoder.CompressionLevel = png.BestCompression
		}
		err = encoder.Encode(out, img)
	case "gif":
		err = gif.Encode(out, img, nil)
	case "tiff", "bmp":
		// imaging selects the encoder from the destination extension,
		// so re-encode through its Save path after closing our handle.
		if cerr := out.Close(); cerr != nil {
			return cerr
		}
		if err := imaging.Save(img, req.OutputPath); err != nil {
			return fmt.Errorf("encoding %s: %w", ext, err)
		}
		if onProgress != nil {
			onProgress(1)
		}
		return nil
	default:
		err = fmt.Errorf("image format %q: %w", req.FormatID, ErrUnsupported)
	}

	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", ext, err)
	}

	if onProgress != nil {
		onProgress(1)
	}
	return nil
}

// ImageInfo holds the structural properties the analyzer needs.
type ImageInfo struct {
	Width      int
	Height     int
	FrameCount int
	HasAlpha   bool
}

// ProbeImage inspects an image without fully decoding it where possible.
// GIF sources are scanned for their frame count; other formats report one
// frame. Returns an error when the file decodes to zero frames or is not an
// image at all.
func ProbeImage(path string) (*ImageInfo, error) {
	if strings.EqualFold(filepath.Ext(path), ".gif") {
		return probeGIF(path)
	}

	config, _, err := decodeConfig(path)
	if err != nil {
		if vipsReady() {
			return probeWithVips(path)
		}
		return nil, fmt.Errorf("unreadable image: %w", err)
	}

	return &ImageInfo{
		Width:      config.Width,
		Height:     config.Height,
		FrameCount: 1,
		HasAlpha:   modelHasAlpha(config.ColorModel),
	}, nil
}

func probeGIF(path string) (*ImageInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("unreadable image: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("image %s contains no frames", filepath.Base(path))
	}

	return &ImageInfo{
		Width:      g.Config.Width,
		Height:     g.Config.Height,
		FrameCount: len(g.Image),
		HasAlpha:   true, // GIF palettes carry a transparent index
	}, nil
}

func probeWithVips(path string) (*ImageInfo, error) {
	params := vips.NewImportParams()
	params.NumPages.Set(-1)
	ref, err := vips.LoadImageFromFile(path, params)
	if err != nil {
		return nil, fmt.Errorf("unreadable image: %w", err)
	}
	defer ref.Close()

	frames := ref.Pages()
	if frames < 1 {
		return nil, fmt.Errorf("image %s contains no frames", filepath.Base(path))
	}
	return &ImageInfo{
		Width:      ref.Width(),
		Height:     ref.Height(),
		FrameCount: frames,
		HasAlpha:   ref.HasAlpha(),
	}, nil
}

func decodeConfig(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close image file %s: %v", path, err)
		}
	}()
	return image.DecodeConfig(f)
}

// modelHasAlpha is a cheap structural check: formats decoding to an
// alpha-capable color model are flagged without scanning pixels.
func modelHasAlpha(m color.Model) bool {
	switch m {
	case color.NRGBAModel, color.NRGBA64Model, color.RGBAModel, color.RGBA64Model:
		return true
	default:
		return false
	}
}
