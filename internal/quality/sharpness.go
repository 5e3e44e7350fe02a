// Package quality scores enrollment frames so blurred captures are
// rejected before their embeddings pollute the encoding store.
package quality

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"

	xdraw "golang.org/x/image/draw"
)

// Sharpness returns the variance of the Laplacian over the face region of
// a JPEG frame. Low variance means a blurred or defocused face. The region
// is clipped to the frame bounds; an empty region scores the whole frame.
func Sharpness(jpegData []byte, region image.Rectangle) (float64, error) {
	img, _, err := image.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return 0, fmt.Errorf("decoding frame: %w", err)
	}

	bounds := img.Bounds()
	if region.Empty() {
		region = bounds
	} else {
		region = region.Intersect(bounds)
		if region.Empty() {
			return 0, fmt.Errorf("face region %v outside frame bounds %v", region, bounds)
		}
	}

	gray := image.NewGray(image.Rect(0, 0, region.Dx(), region.Dy()))
	xdraw.Draw(gray, gray.Bounds(), img, region.Min, xdraw.Src)

	return laplacianVariance(gray), nil
}

// laplacianVariance applies the 4-neighbor Laplacian kernel and returns the
// variance of its responses. Matches the usual blur-detection metric.
func laplacianVariance(gray *image.Gray) float64 {
	w := gray.Bounds().Dx()
	h := gray.Bounds().Dy()
	if w < 3 || h < 3 {
		return 0
	}

	at := func(x, y int) float64 {
		return float64(gray.Pix[y*gray.Stride+x])
	}

	n := 0
	var sum, sumSq float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := at(x-1, y) + at(x+1, y) + at(x, y-1) + at(x, y+1) - 4*at(x, y)
			sum += lap
			sumSq += lap * lap
			n++
		}
	}

	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}
