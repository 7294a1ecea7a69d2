/*
Package palette implements the greedy color quantizer used to reduce an image
to an indexed form suitable for embedding in firmware.

Colors are admitted to the palette in the order they are first seen when
scanning the image row by row. Once the palette holds the requested number of
colors, any further new color is mapped to the nearest existing entry using
the squared euclidean distance over the R, G, B and A channels. Ties go to the
entry that was inserted first.
*/
package palette

import (
	"errors"
	"image/color"
)

// MaxColors is the largest palette supported; indices are stored as bytes.
const MaxColors = 256

var (
	// ErrColorLimit is returned when the requested palette size is outside
	// of 1 to MaxColors.
	ErrColorLimit = errors.New("palette: color limit must be between 1 and 256")
	// ErrBufferSize is returned when a pixel buffer doesn't match its
	// dimensions.
	ErrBufferSize = errors.New("palette: pixel buffer does not match dimensions")
)

// Palette is a bounded, insertion-ordered set of distinct colors.
type Palette struct {
	colors []color.NRGBA
	lookup map[color.NRGBA]int
	limit  int

	tree bool
	kd   *kdTree
}

// New returns an empty palette that admits at most limit colors.
func New(limit int) (*Palette, error) {
	if limit < 1 || limit > MaxColors {
		return nil, ErrColorLimit
	}
	return &Palette{
		colors: make([]color.NRGBA, 0, limit),
		lookup: make(map[color.NRGBA]int, limit),
		limit:  limit,
	}, nil
}

// Len returns the number of colors in the palette
func (p *Palette) Len() int {
	return len(p.colors)
}

// Full reports whether the palette has reached its limit
func (p *Palette) Full() bool {
	return len(p.colors) >= p.limit
}

// Colors returns the palette in insertion order.
func (p *Palette) Colors() color.Palette {
	cp := make(color.Palette, len(p.colors))
	for i, c := range p.colors {
		cp[i] = c
	}
	return cp
}

// Lookup returns the index of an exact match for c.
func (p *Palette) Lookup(c color.NRGBA) (int, bool) {
	i, ok := p.lookup[c]
	return i, ok
}

// Add inserts c if it isn't already present and there is room, returning its
// index. It returns false if c is new and the palette is full.
func (p *Palette) Add(c color.NRGBA) (int, bool) {
	if i, ok := p.lookup[c]; ok {
		return i, true
	}
	if p.Full() {
		return 0, false
	}
	i := len(p.colors)
	p.colors = append(p.colors, c)
	p.lookup[c] = i
	p.kd = nil
	return i, true
}

// Index returns the palette index used for c, adding c if there is room and
// falling back to the nearest entry otherwise. The palette must not be empty
// when it is full, which New guarantees.
func (p *Palette) Index(c color.NRGBA) int {
	if i, ok := p.Add(c); ok {
		return i
	}
	return p.Nearest(c)
}

// Nearest returns the index of the entry closest to c. Of several entries at
// the same distance the earliest inserted wins. It returns -1 for an empty
// palette.
func (p *Palette) Nearest(c color.NRGBA) int {
	if len(p.colors) == 0 {
		return -1
	}
	if p.tree {
		if p.kd == nil {
			p.kd = newKDTree(p.colors)
		}
		return p.kd.nearest(c)
	}
	return linearNearest(p.colors, c)
}

func linearNearest(colors []color.NRGBA, c color.NRGBA) int {
	best, bestSum := 0, sqDist(colors[0], c)
	for i := 1; i < len(colors); i++ {
		// Strictly less keeps the first of equally distant entries
		if sum := sqDist(colors[i], c); sum < bestSum {
			best, bestSum = i, sum
		}
	}
	return best
}

func sqDiff(x, y uint8) int {
	d := int(x) - int(y)
	return d * d
}

func sqDist(a, b color.NRGBA) int {
	return sqDiff(a.R, b.R) + sqDiff(a.G, b.G) + sqDiff(a.B, b.B) + sqDiff(a.A, b.A)
}

// Pack returns c as a 32-bit 0xRRGGBBAA word.
func Pack(c color.NRGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

// Unpack is the inverse of Pack.
func Unpack(v uint32) color.NRGBA {
	return color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
}
