package palette

import (
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKDTreeMatchesLinearScan(t *testing.T) {
	r := rand.New(rand.NewSource(3))

	for n := 1; n <= 64; n *= 2 {
		colors := make([]color.NRGBA, n)
		for i := range colors {
			// Coarse values so that many distances tie
			colors[i] = rgba(uint8(r.Intn(4)*64), uint8(r.Intn(4)*64), uint8(r.Intn(4)*64), 255)
		}
		tree := newKDTree(colors)

		for i := 0; i < 500; i++ {
			c := rgba(uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256)))
			assert.Equal(t, linearNearest(colors, c), tree.nearest(c), "%d colors, query %v", n, c)
		}
	}
}

func TestKDTreeDuplicateCoordinates(t *testing.T) {
	colors := []color.NRGBA{
		rgba(0, 0, 0, 0),
		rgba(0, 0, 0, 2),
		rgba(0, 0, 2, 0),
		rgba(0, 2, 0, 0),
		rgba(2, 0, 0, 0),
	}
	tree := newKDTree(colors)

	for _, tc := range []struct {
		query color.NRGBA
		want  int
	}{
		{rgba(1, 0, 0, 0), 0},
		{rgba(0, 0, 0, 1), 0},
		{rgba(1, 1, 1, 1), 0},
		{rgba(1, 1, 1, 2), 1},
		{rgba(2, 0, 1, 0), 4},
		{rgba(0, 2, 2, 0), 2},
	} {
		assert.Equal(t, tc.want, tree.nearest(tc.query), "query %v", tc.query)
		assert.Equal(t, tc.want, linearNearest(colors, tc.query), "query %v", tc.query)
	}
}
