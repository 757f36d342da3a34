// Package processing handles the image plumbing around the session
// engine: decoding captures and catalog images (with WebP support),
// fetching style reference images over HTTP, downscaling uploads, and
// preparing JPEG payloads for the vision collaborators.
package processing

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// MaxUploadDim is the long-side limit applied to uploaded photos
// before the quality check.
const MaxUploadDim = 1280

// Processor handles image loading, encoding and transport plumbing.
type Processor struct {
	httpClient *http.Client
}

// NewProcessor creates a Processor with a 30 second fetch timeout.
func NewProcessor() *Processor {
	return &Processor{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// DecodeImage decodes an image from byte data, trying the registered
// stdlib decoders first and falling back to an explicit WebP decode.
func (p *Processor) DecodeImage(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// DecodeUpload decodes an uploaded photo and downscales it so its
// long side does not exceed MaxUploadDim.
func (p *Processor) DecodeUpload(data []byte) (image.Image, error) {
	img, err := p.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return Downscale(img, MaxUploadDim), nil
}

// Downscale resizes img so neither dimension exceeds maxDim,
// preserving aspect ratio. Images already within bounds are returned
// unchanged.
func Downscale(img image.Image, maxDim int) image.Image {
	if maxDim <= 0 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	if w >= h {
		return imaging.Resize(img, maxDim, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, maxDim, imaging.Lanczos)
}

// FetchImage downloads an image over HTTP(S). Query strings on the
// URL are dropped and a cache-busting timestamp is appended, matching
// how style reference images are stored.
func (p *Processor) FetchImage(imageURL string) ([]byte, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s", parsed.Scheme)
	}

	clean := strings.SplitN(imageURL, "?", 2)[0]
	fetchURL := fmt.Sprintf("%s?t=%d", clean, time.Now().UnixMilli())

	req, err := http.NewRequest(http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	return io.ReadAll(resp.Body)
}

// EncodeJPEG encodes img as JPEG at the given quality, the payload
// format sent to the vision collaborators.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// PrepareForModel downscales img to maxDim and encodes it as JPEG.
func (p *Processor) PrepareForModel(img image.Image, maxDim, quality int) ([]byte, error) {
	return EncodeJPEG(Downscale(img, maxDim), quality)
}

// SaveImage writes img to path; the format follows the extension
// (webp, png, default jpeg).
func (p *Processor) SaveImage(img image.Image, path string, quality int) error {
	switch strings.ToLower(ext(path)) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return webp.Encode(f, img, &webp.Options{Quality: float32(quality)})
	case "png":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return png.Encode(f, img)
	default:
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

func ext(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return ""
}
