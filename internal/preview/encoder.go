package preview

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/learnmore-edu/extractor/internal/models"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Representation is the size-bounded image shown next to the editable
// fields during review. Degraded means re-encoding was skipped or failed
// and Data holds the original upload bytes.
type Representation struct {
	Data     []byte `json:"-"`
	MIME     string `json:"mime"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Degraded bool   `json:"degraded"`
}

// Encoder re-encodes uploads into bounded JPEG previews
type Encoder struct {
	MaxEdge int
	Quality int
}

// NewEncoder returns an encoder with the default bounds: longest edge
// 1200px, JPEG quality 85.
func NewEncoder() *Encoder {
	return &Encoder{MaxEdge: 1200, Quality: 85}
}

// Encode produces the preview for an upload. It never fails: unsupported
// containers and decode/encode errors fall back to the original bytes with
// the degraded flag set, so a corrupt-but-readable image stays reviewable.
func (e *Encoder) Encode(img models.UploadedImage) Representation {
	if isRasterUnsupported(img) {
		slog.Info("Skipping preview re-encode for camera-native container", "mime", img.MIME, "filename", img.Filename)
		return degraded(img)
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		slog.Warn("Failed to decode image for preview, using original bytes", "filename", img.Filename, "error", err)
		return degraded(img)
	}

	bounds := src.Bounds()
	width, height := e.boundedSize(bounds.Dx(), bounds.Dy())

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: e.Quality}); err != nil {
		slog.Warn("Failed to re-encode preview, using original bytes", "filename", img.Filename, "error", err)
		return degraded(img)
	}

	slog.Debug("Preview encoded", "filename", img.Filename, "original_bytes", len(img.Data), "preview_bytes", buf.Len(), "width", width, "height", height)

	return Representation{
		Data:   buf.Bytes(),
		MIME:   "image/jpeg",
		Width:  width,
		Height: height,
	}
}

// boundedSize constrains the longest edge to MaxEdge, preserving aspect ratio
func (e *Encoder) boundedSize(width, height int) (int, int) {
	longest := width
	if height > longest {
		longest = height
	}
	if longest <= e.MaxEdge || longest == 0 {
		return width, height
	}

	scale := float64(e.MaxEdge) / float64(longest)
	scaled := func(d int) int {
		s := int(float64(d)*scale + 0.5)
		if s < 1 {
			return 1
		}
		return s
	}
	return scaled(width), scaled(height)
}

func degraded(img models.UploadedImage) Representation {
	return Representation{
		Data:     img.Data,
		MIME:     img.MIME,
		Degraded: true,
	}
}

// isRasterUnsupported detects HEIC/HEIF uploads, which the raster pipeline
// cannot decode. Phone cameras often report a generic MIME type for these,
// so the filename extension is checked too.
func isRasterUnsupported(img models.UploadedImage) bool {
	switch strings.ToLower(img.MIME) {
	case "image/heic", "image/heif":
		return true
	}

	switch strings.ToLower(filepath.Ext(img.Filename)) {
	case ".heic", ".heif":
		return true
	}
	return false
}
