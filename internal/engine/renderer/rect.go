package renderer

import "github.com/chewxy/math32"

// Rect is a quad placement in clip space: X, Y is the bottom-left corner.
type Rect struct {
	X, Y, W, H float32
}

// FullRect covers the whole viewport.
var FullRect = Rect{X: -1, Y: -1, W: 2, H: 2}

// Fit centers an image of imgW x imgH pixels in a viewW x viewH viewport,
// magnified by scale. A scale below 1 picks the largest whole factor that
// fits, at least 1. Sizes are snapped to whole pixels so texels stay square
// under point filtering.
func Fit(imgW, imgH, viewW, viewH int, scale float32) Rect {
	if imgW <= 0 || imgH <= 0 || viewW <= 0 || viewH <= 0 {
		return Rect{}
	}
	if scale < 1 {
		scale = math32.Max(1, math32.Floor(math32.Min(
			float32(viewW)/float32(imgW),
			float32(viewH)/float32(imgH),
		)))
	}
	w := math32.Floor(float32(imgW)*scale + 0.5)
	h := math32.Floor(float32(imgH)*scale + 0.5)
	x := math32.Floor((float32(viewW) - w) / 2)
	y := math32.Floor((float32(viewH) - h) / 2)
	return Rect{
		X: x/float32(viewW)*2 - 1,
		Y: y/float32(viewH)*2 - 1,
		W: w / float32(viewW) * 2,
		H: h / float32(viewH) * 2,
	}
}
