package palette

import (
	"image/color"
	"math"
	"sort"
)

// kdTree partitions palette colors over the R, G, B and A axes in turn. It
// returns the same answer as a linear scan, including the choice of the
// lowest index between equally distant colors.
type kdTree struct {
	root *kdNode
}

type kdNode struct {
	c           color.NRGBA
	index       int
	axis        int
	left, right *kdNode
}

type kdPoint struct {
	c     color.NRGBA
	index int
}

func channel(c color.NRGBA, axis int) int {
	switch axis {
	case 0:
		return int(c.R)
	case 1:
		return int(c.G)
	case 2:
		return int(c.B)
	default:
		return int(c.A)
	}
}

func newKDTree(colors []color.NRGBA) *kdTree {
	points := make([]kdPoint, len(colors))
	for i, c := range colors {
		points[i] = kdPoint{c, i}
	}
	return &kdTree{root: buildKD(points, 0)}
}

func buildKD(points []kdPoint, depth int) *kdNode {
	if len(points) == 0 {
		return nil
	}

	axis := depth % 4
	sort.Slice(points, func(i, j int) bool {
		ci, cj := channel(points[i].c, axis), channel(points[j].c, axis)
		if ci != cj {
			return ci < cj
		}
		return points[i].index < points[j].index
	})

	m := len(points) >> 1
	return &kdNode{
		c:     points[m].c,
		index: points[m].index,
		axis:  axis,
		left:  buildKD(points[:m], depth+1),
		right: buildKD(points[m+1:], depth+1),
	}
}

func (t *kdTree) nearest(c color.NRGBA) int {
	best, bestSum := -1, math.MaxInt

	var search func(*kdNode)
	search = func(n *kdNode) {
		if n == nil {
			return
		}

		sum := sqDist(n.c, c)
		if sum < bestSum || (sum == bestSum && n.index < best) {
			best, bestSum = n.index, sum
		}

		d := channel(c, n.axis) - channel(n.c, n.axis)
		near, far := n.left, n.right
		if d >= 0 {
			near, far = n.right, n.left
		}
		search(near)
		// Equal distances must still be visited for the index tie-break
		if d*d <= bestSum {
			search(far)
		}
	}
	search(t.root)

	return best
}
