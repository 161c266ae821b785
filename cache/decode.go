package cache

import (
	"bytes"
	"image"
	// decoders registered for image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	"golang.org/x/image/webp"
)

// decode decodes image bytes, WebP is decoded by its own decoder.
// Images without pixels are rejected whatever their format.
func decode(data []byte) (image.Image, error) {
	img, format, err := decodeFormat(data)
	if err != nil {
		return nil, err
	}
	err = checkBounds(img, format)
	if err != nil {
		return nil, err
	}

	return img, nil
}

func checkBounds(img image.Image, format string) error {
	if img.Bounds().Empty() {
		return errors.Errorf("decoded %s image is empty", format)
	}

	return nil
}

func decodeFormat(data []byte) (image.Image, string, error) {
	if isWebP(data) {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to decode webp")
		}
		return img, "webp", nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to decode image")
	}

	return img, format, nil
}

// isWebP checks for the RIFF container header with a WEBP form type
func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}
