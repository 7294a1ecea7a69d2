package palette

import (
	"image"
	"image/color"
)

// NewBuffer wraps a row-major slice of non-premultiplied RGBA bytes as an
// image. The slice is not copied.
func NewBuffer(width, height int, pix []byte) (*image.NRGBA, error) {
	if width < 0 || height < 0 || len(pix) != width*height*4 {
		return nil, ErrBufferSize
	}
	return &image.NRGBA{
		Pix:    pix,
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}, nil
}

// Buffer returns a copy of m as non-premultiplied RGBA with its top-left
// corner at (0, 0).
func Buffer(m image.Image) *image.NRGBA {
	b := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	// Going through draw.Draw would premultiply and lose precision on
	// translucent pixels
	if src, ok := m.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[i:i+dst.Stride])
		}
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA))
		}
	}
	return dst
}

// GreedyQuantizer builds a palette from the first distinct colors of an
// image and maps every other color onto its nearest palette entry.
type GreedyQuantizer struct {
	// Tree uses a k-d tree for nearest color lookups instead of a linear
	// scan. The result is identical.
	Tree bool
}

// Paletted reduces m to at most limit colors.
func (q GreedyQuantizer) Paletted(m image.Image, limit int) (*image.Paletted, error) {
	p, err := New(limit)
	if err != nil {
		return nil, err
	}
	p.tree = q.Tree

	src := Buffer(m)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(x, y)
			c := color.NRGBA{src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3]}
			pix[y*w+x] = uint8(p.Index(c))
		}
	}

	return &image.Paletted{
		Pix:     pix,
		Stride:  w,
		Rect:    image.Rect(0, 0, w, h),
		Palette: p.Colors(),
	}, nil
}

// Quantize returns a copy of m as an *image.NRGBA when indexed is false, in
// which case limit is ignored. Otherwise it returns an *image.Paletted of at
// most limit colors.
func (q GreedyQuantizer) Quantize(m image.Image, limit int, indexed bool) (image.Image, error) {
	if !indexed {
		return Buffer(m), nil
	}
	return q.Paletted(m, limit)
}

// Quantize is GreedyQuantizer{}.Quantize.
func Quantize(m image.Image, limit int, indexed bool) (image.Image, error) {
	return GreedyQuantizer{}.Quantize(m, limit, indexed)
}
