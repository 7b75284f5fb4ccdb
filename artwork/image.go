package artwork

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxArtworkBytes = 10 * 1024 * 1024
	// maxArtworkDimension bounds either side of a payload before it is decoded.
	maxArtworkDimension = 4096
	jpegQuality         = 90
)

// CachedImage is a decoded artwork together with the encoded bytes it was
// decoded from (or encoded to) and its pixel width.
type CachedImage struct {
	Key   Key
	Image image.Image
	Width int
	Data  []byte
}

// decodeArtwork validates that data is an image and decodes it.
func decodeArtwork(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty payload")
	}
	if len(data) > maxArtworkBytes {
		return nil, "", fmt.Errorf("artwork exceeds %d bytes", maxArtworkBytes)
	}
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		return nil, "", fmt.Errorf("payload is not an image: %s", kind.MIME.Value)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, "", fmt.Errorf("image has no pixels")
	}
	if cfg.Width > maxArtworkDimension || cfg.Height > maxArtworkDimension {
		return nil, "", fmt.Errorf("image is %dx%d, limit is %d per side", cfg.Width, cfg.Height, maxArtworkDimension)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// conformImage scales img to a width x width square when it is not one
// already, and returns JPEG bytes for it. original is reused when it is
// already a JPEG of the right size.
func conformImage(img image.Image, format string, original []byte, width int) (image.Image, []byte, error) {
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != width {
		dst := image.NewRGBA(image.Rect(0, 0, width, width))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		img = dst
	} else if format == "jpeg" {
		return img, original, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, nil, fmt.Errorf("failed to encode artwork: %w", err)
	}
	return img, buf.Bytes(), nil
}
