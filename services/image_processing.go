package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
)

// PrepareItemPhoto normalizes a wardrobe photo before classification: bright
// background pixels are feathered towards pure white so the model sees the
// garment, not the room. The central area is protected from any change since
// the item itself usually sits there.
func PrepareItemPhoto(imageBytes []byte) ([]byte, error) {
	return whitenBackgroundFeathered(imageBytes, 190, 235, 0.5)
}

func whitenBackgroundFeathered(imageBytes []byte, lowerThreshold, upperThreshold uint8, centralProtectionRatio float64) ([]byte, error) {
	if lowerThreshold >= upperThreshold {
		return nil, fmt.Errorf("lowerThreshold must be less than upperThreshold")
	}
	if centralProtectionRatio < 0.0 || centralProtectionRatio > 1.0 {
		return nil, fmt.Errorf("centralProtectionRatio must be between 0.0 and 1.0")
	}

	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Max.X, bounds.Max.Y
	newImg := image.NewRGBA(bounds)

	protectedWidth := int(float64(width) * centralProtectionRatio)
	protectedHeight := int(float64(height) * centralProtectionRatio)
	x0 := (width - protectedWidth) / 2
	y0 := (height - protectedHeight) / 2
	x1 := x0 + protectedWidth
	y1 := y0 + protectedHeight

	transitionRange := float64(upperThreshold - lowerThreshold)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			originalColor := img.At(x, y)
			if x >= x0 && x < x1 && y >= y0 && y < y1 {
				newImg.Set(x, y, originalColor)
				continue
			}

			r, g, b, a := originalColor.RGBA()
			r8, g8, b8, a8 := uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)

			luminance := 0.299*float64(r8) + 0.587*float64(g8) + 0.114*float64(b8)
			switch {
			case luminance <= float64(lowerThreshold):
				newImg.Set(x, y, originalColor)
			case luminance >= float64(upperThreshold):
				newImg.Set(x, y, color.RGBA{R: 255, G: 255, B: 255, A: a8})
			default:
				// transition zone: blend each channel towards white
				blendFactor := (luminance - float64(lowerThreshold)) / transitionRange
				newImg.Set(x, y, color.RGBA{
					R: uint8(math.Round(float64(r8)*(1.0-blendFactor) + 255.0*blendFactor)),
					G: uint8(math.Round(float64(g8)*(1.0-blendFactor) + 255.0*blendFactor)),
					B: uint8(math.Round(float64(b8)*(1.0-blendFactor) + 255.0*blendFactor)),
					A: a8,
				})
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, newImg); err != nil {
		return nil, fmt.Errorf("failed to encode image to png: %w", err)
	}
	return buf.Bytes(), nil
}
