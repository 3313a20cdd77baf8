package detect

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ImageToMat converts a Go image.Image to an OpenCV Mat in BGR channel
// order, the layout the detection pipeline expects.
func ImageToMat(srcImg image.Image) (gocv.Mat, error) {
	bounds := srcImg.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return gocv.Mat{}, fmt.Errorf("empty image %dx%d", w, h)
	}

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := srcImg.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			// Convert from 16-bit to 8-bit and BGR order for OpenCV
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat, nil
}

// DetectImage runs a detector on a Go image.Image, handling the Mat
// conversion. Entry point for callers that don't work in Mats.
func DetectImage(d Detector, srcImg image.Image) ([]Result, error) {
	mat, err := ImageToMat(srcImg)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()
	return d.Detect(mat), nil
}
