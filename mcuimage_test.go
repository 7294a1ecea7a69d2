package mcuimage

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/jiink/acmdev-mcu-image-converter/header"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int, colors ...color.NRGBA) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, c := range colors {
		m.SetNRGBA(i%w, i/w, c)
	}
	return m
}

func TestValidate(t *testing.T) {
	for _, opts := range []Options{
		{Indexed: true, ColorLimit: 0},
		{Indexed: true, ColorLimit: -3},
		{Indexed: true, ColorLimit: 257},
		{Indexed: true, ColorLimit: 4, Dialect: header.Dialect(9)},
		{ColorLimit: 4, Width: -1},
	} {
		err := opts.Validate()
		require.Error(t, err, "%+v", opts)
		assert.True(t, errors.Is(err, ErrInvalidConfig), "%+v", opts)
	}

	assert.NoError(t, Options{Indexed: false, ColorLimit: 0}.Validate())
	assert.NoError(t, Options{Indexed: true, ColorLimit: 256, Dialect: header.Constexpr}.Validate())
}

func TestConvertIndexed(t *testing.T) {
	m := testImage(2, 1, color.NRGBA{255, 0, 0, 255}, color.NRGBA{0, 255, 0, 255})

	text, err := Convert(m, "sprite.png", Options{ColorLimit: 4, Indexed: true, Dialect: header.Plain})
	require.NoError(t, err)
	assert.Contains(t, text, "const uint32_t sprite_palette[2] = {\n    0xFF0000FF, 0x00FF00FF\n};")
	assert.Contains(t, text, "const uint8_t sprite_data[2 * 1] = {\n    0x00, 0x01\n};")
}

func TestConvertDirect(t *testing.T) {
	m := testImage(1, 1, color.NRGBA{10, 20, 30, 40})

	// The color limit is ignored in direct mode, even when invalid
	text, err := Convert(m, "px.png", Options{ColorLimit: 0, Dialect: header.Plain})
	require.NoError(t, err)
	assert.Contains(t, text, "0x0A141E28")
}

func TestConvertSingleColor(t *testing.T) {
	m := testImage(3, 1, color.NRGBA{9, 9, 9, 255}, color.NRGBA{200, 0, 0, 255}, color.NRGBA{0, 0, 200, 255})

	text, err := Convert(m, "three.bmp", Options{ColorLimit: 1, Indexed: true, Dialect: header.Plain})
	require.NoError(t, err)
	assert.Contains(t, text, "three_palette[1] = {\n    0x090909FF\n};")
	assert.Contains(t, text, "three_data[3 * 1] = {\n    0x00, 0x00, 0x00\n};")
}

func TestConvertIdentifier(t *testing.T) {
	m := testImage(1, 1, color.NRGBA{1, 1, 1, 1})

	text, err := Convert(m, "My Sprite!.png", Options{ColorLimit: 2, Indexed: true, Dialect: header.Struct})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "#ifndef MY_SPRITE__H\n"))
	assert.Contains(t, text, "My_Sprite__image_t")
}

func TestConvertEmpty(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 0, 0))

	for _, indexed := range []bool{true, false} {
		text, err := Convert(m, "!.png", Options{ColorLimit: 8, Indexed: indexed, Dialect: header.Plain})
		require.NoError(t, err)
		assert.Contains(t, text, "const uint16_t __width = 0;")
		assert.Contains(t, text, "const uint16_t __height = 0;")
	}
}

func TestConvertRejectsBeforeWork(t *testing.T) {
	_, err := Convert(nil, "x.png", Options{ColorLimit: 0, Indexed: true})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestConvertTreeSameOutput(t *testing.T) {
	var colors []color.NRGBA
	for i := 0; i < 64; i++ {
		colors = append(colors, color.NRGBA{uint8(i * 4), uint8(255 - i*3), uint8(i * 7), 255})
	}
	m := testImage(8, 8, colors...)

	for _, d := range []header.Dialect{header.Plain, header.Struct, header.Constexpr} {
		linear, err := Convert(m, "g.png", Options{ColorLimit: 5, Indexed: true, Dialect: d})
		require.NoError(t, err)
		tree, err := Convert(m, "g.png", Options{ColorLimit: 5, Indexed: true, Dialect: d, Tree: true})
		require.NoError(t, err)
		assert.Equal(t, linear, tree)
	}
}

func TestOptionsKey(t *testing.T) {
	a := Options{ColorLimit: 4, Dialect: header.Plain}
	b := Options{ColorLimit: 8, Dialect: header.Plain}
	assert.Equal(t, a.key("x"), b.key("x"), "limit is irrelevant in direct mode")

	a.Indexed, b.Indexed = true, true
	assert.NotEqual(t, a.key("x"), b.key("x"))
	assert.NotEqual(t, a.key("x"), a.key("y"))

	c := a
	c.Tree = true
	assert.Equal(t, a.key("x"), c.key("x"))
}

func TestConvertRejectsOversized(t *testing.T) {
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 70000, 0),
		image.Rect(0, 0, 0, header.MaxDimension+1),
	} {
		_, err := Convert(image.NewNRGBA(r), "big.png", Options{Dialect: header.Struct})
		assert.True(t, errors.Is(err, ErrInvalidConfig), "%v", r)
	}

	text, err := Convert(image.NewNRGBA(image.Rect(0, 0, header.MaxDimension, 0)), "edge.png", Options{Dialect: header.Struct})
	require.NoError(t, err)
	assert.Contains(t, text, "#define EDGE_WIDTH ((uint16_t)65535)")
}
