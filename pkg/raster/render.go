package raster

import (
	"context"
	"image"
	"image/png"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/palshade/pkg/d3d9"
)

// FragmentFunc shades the fragment at texture coordinate (u, v).
type FragmentFunc func(u, v float32) (d3d9.Vec4, error)

// Render shades every pixel of dst, sampling at pixel centers so that a
// destination the size of the index texture maps one texel per pixel.
// Rows are shaded in parallel; fragments do not share state, so the result
// does not depend on scheduling. Cancelling ctx stops the pass between rows.
func Render(ctx context.Context, dst *image.NRGBA, frag FragmentFunc) error {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for y := 0; y < h; y++ {
		y := y
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v := (float32(y) + 0.5) / float32(h)
			row := dst.Pix[dst.PixOffset(b.Min.X, b.Min.Y+y):]
			for x := 0; x < w; x++ {
				u := (float32(x) + 0.5) / float32(w)
				c, err := frag(u, v)
				if err != nil {
					return err
				}
				putColor(row[x*4:x*4+4], c)
			}
			return nil
		})
	}

	return g.Wait()
}

// RenderImage renders the pipeline at the size of its index texture.
func (p *Pipeline) RenderImage(ctx context.Context) (*image.NRGBA, error) {
	w, h := p.Image.Size()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	if err := Render(ctx, dst, p.Fragment()); err != nil {
		return nil, err
	}
	return dst, nil
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}

func putColor(px []byte, c d3d9.Vec4) {
	for i := 0; i < 4; i++ {
		px[i] = unorm8(c[i])
	}
}

func unorm8(v float32) byte {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
