package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/andreyxaxa/File-Moderator/pkg/types/errs"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // register webp decoder
)

const (
	maxDimension = 4096
	minDimension = 64
	shrinkFactor = 0.75
)

type ImageProcessor struct {
}

func New() *ImageProcessor {
	return &ImageProcessor{}
}

// Normalize decodes any supported format (jpeg, png, gif, webp, bmp, tiff) and
// re-encodes it as PNG, shrinking until the result fits maxBytes.
func (p *ImageProcessor) Normalize(ctx context.Context, data []byte, maxBytes int) ([]byte, error) {
	img, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - Normalize - decodeImage: %w", err)
	}

	img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ImageProcessor - Normalize: %w", err)
		}

		res, err := encodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("ImageProcessor - Normalize - encodePNG: %w", err)
		}

		if len(res) <= maxBytes {
			return res, nil
		}

		b := img.Bounds()
		w, h := int(float64(b.Dx())*shrinkFactor), int(float64(b.Dy())*shrinkFactor)
		if w < minDimension || h < minDimension {
			return nil, fmt.Errorf("ImageProcessor - Normalize - cannot fit %d bytes: %w", maxBytes, errs.ErrUnsupportedImage)
		}

		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}
}

func decodeImage(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - decodeImage - imaging.Decode: %w: %w", errs.ErrUnsupportedImage, err)
	}

	return img, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer

	err := imaging.Encode(&buf, img, imaging.PNG)
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - encodePNG - imaging.Encode: %w", err)
	}

	return buf.Bytes(), nil
}
