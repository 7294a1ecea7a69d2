package header

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/jiink/acmdev-mcu-image-converter/palette"
)

const indent = "    "

// rgbaMacro packs four channel values the same way as the 0xRRGGBBAA words
// used by the C dialects. Every argument is widened as unsigned.
const rgbaMacro = `#ifndef MCUIMAGE_RGBA
#define MCUIMAGE_RGBA(r, g, b, a) \
    ((static_cast<std::uint32_t>(r) << 24) | (static_cast<std::uint32_t>(g) << 16) | \
     (static_cast<std::uint32_t>(b) << 8) | static_cast<std::uint32_t>(a))
#endif
`

type asset struct {
	width, height int
	indexed       bool
	palette       []color.NRGBA
	indices       []uint8
	pixels        []color.NRGBA
}

func newAsset(m image.Image) (*asset, error) {
	b := m.Bounds()
	a := &asset{
		width:  b.Dx(),
		height: b.Dy(),
	}

	switch m := m.(type) {
	case *image.Paletted:
		a.indexed = true
		a.palette = make([]color.NRGBA, len(m.Palette))
		for i, c := range m.Palette {
			a.palette[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
		}
		a.indices = make([]uint8, 0, a.width*a.height)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				a.indices = append(a.indices, m.ColorIndexAt(x, y))
			}
		}
	case *image.NRGBA:
		a.pixels = make([]color.NRGBA, 0, a.width*a.height)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				a.pixels = append(a.pixels, m.NRGBAAt(x, y))
			}
		}
	default:
		return nil, ErrUnsupported
	}

	return a, nil
}

func packed(c color.NRGBA) string {
	return fmt.Sprintf("0x%08X", palette.Pack(c))
}

func index(i uint8) string {
	return fmt.Sprintf("0x%02X", i)
}

func macro(c color.NRGBA) string {
	return fmt.Sprintf("MCUIMAGE_RGBA(%d, %d, %d, %d)", c.R, c.G, c.B, c.A)
}

type encoder struct {
	b     bytes.Buffer
	a     *asset
	ident string
	guard string
}

func (e *encoder) printf(format string, args ...interface{}) {
	fmt.Fprintf(&e.b, format, args...)
}

// list writes a brace-enclosed initializer, starting a new line every stride
// items.
func (e *encoder) list(n, stride int, item func(int) string) {
	e.b.WriteString("{")
	for i := 0; i < n; i++ {
		if i%stride == 0 {
			e.b.WriteString("\n" + indent)
		} else {
			e.b.WriteString(" ")
		}
		e.b.WriteString(item(i))
		if i < n-1 {
			e.b.WriteString(",")
		}
	}
	e.b.WriteString("\n}")
}

func (e *encoder) stride() int {
	if e.a.width < 1 {
		return 1
	}
	return e.a.width
}

func (e *encoder) size() string {
	return fmt.Sprintf("%d * %d", e.a.width, e.a.height)
}

func (e *encoder) paletteList(item func(color.NRGBA) string) {
	e.list(len(e.a.palette), e.stride(), func(i int) string {
		return item(e.a.palette[i])
	})
}

func (e *encoder) dataList() {
	if e.a.indexed {
		e.list(len(e.a.indices), e.stride(), func(i int) string {
			return index(e.a.indices[i])
		})
		return
	}
	e.list(len(e.a.pixels), e.stride(), func(i int) string {
		return packed(e.a.pixels[i])
	})
}

func (e *encoder) dataType() string {
	if e.a.indexed {
		return "uint8_t"
	}
	return "uint32_t"
}

func (e *encoder) begin(includes ...string) {
	e.printf("#ifndef %s\n#define %s\n\n", e.guard, e.guard)
	for _, inc := range includes {
		e.printf("#include <%s>\n", inc)
	}
	e.b.WriteString("\n")
}

func (e *encoder) end() {
	e.printf("#endif // %s\n", e.guard)
}

func (e *encoder) plain() {
	e.begin("stdint.h")

	if e.a.indexed {
		e.printf("const uint32_t %s_palette[%d] = ", e.ident, len(e.a.palette))
		e.paletteList(packed)
		e.b.WriteString(";\n")
	}
	e.printf("const %s %s_data[%s] = ", e.dataType(), e.ident, e.size())
	e.dataList()
	e.b.WriteString(";\n")
	e.printf("const uint16_t %s_width = %d;\n", e.ident, e.a.width)
	e.printf("const uint16_t %s_height = %d;\n\n", e.ident, e.a.height)

	e.end()
}

func (e *encoder) structured() {
	e.begin("stdint.h")

	upper := strings.ToUpper(e.ident)
	e.printf("#define %s_WIDTH ((uint16_t)%d)\n", upper, e.a.width)
	e.printf("#define %s_HEIGHT ((uint16_t)%d)\n\n", upper, e.a.height)

	e.b.WriteString("typedef struct {\n")
	if e.a.indexed {
		e.b.WriteString(indent + "const uint32_t *palette;\n")
	}
	e.printf(indent+"const %s *data;\n", e.dataType())
	e.b.WriteString(indent + "uint16_t width;\n")
	e.b.WriteString(indent + "uint16_t height;\n")
	e.printf("} %s_image_t;\n\n", e.ident)

	if e.a.indexed {
		e.printf("static const uint32_t %s_palette[%d] = ", e.ident, len(e.a.palette))
		e.paletteList(packed)
		e.b.WriteString(";\n\n")
	}
	e.printf("static const %s %s_data[%s] = ", e.dataType(), e.ident, e.size())
	e.dataList()
	e.b.WriteString(";\n\n")

	e.printf("static const %s_image_t %s_image = {\n", e.ident, e.ident)
	if e.a.indexed {
		e.printf(indent+"%s_palette,\n", e.ident)
	}
	e.printf(indent+"%s_data,\n", e.ident)
	e.printf(indent+"%s_WIDTH,\n", upper)
	e.printf(indent+"%s_HEIGHT\n", upper)
	e.b.WriteString("};\n\n")

	e.end()
}

func (e *encoder) constexpr() {
	e.begin("array", "cstdint", "span")

	e.b.WriteString(rgbaMacro + "\n")

	e.printf("namespace %s {\n\n", e.ident)

	e.printf("constexpr std::uint16_t width = %d;\n", e.a.width)
	e.printf("constexpr std::uint16_t height = %d;\n\n", e.a.height)

	if e.a.indexed {
		e.printf("constexpr std::array<std::uint32_t, %d> palette = ", len(e.a.palette))
		e.paletteList(macro)
		e.b.WriteString(";\n\n")
	}
	e.printf("constexpr std::array<std::%s, %s> data = ", e.dataType(), e.size())
	e.dataList()
	e.b.WriteString(";\n\n")

	e.b.WriteString("struct Image {\n")
	if e.a.indexed {
		e.b.WriteString(indent + "std::span<const std::uint32_t> palette;\n")
	}
	e.printf(indent+"std::span<const std::%s> data;\n", e.dataType())
	e.b.WriteString(indent + "std::uint16_t width;\n")
	e.b.WriteString(indent + "std::uint16_t height;\n")
	e.b.WriteString("};\n\n")

	if e.a.indexed {
		e.b.WriteString("constexpr Image image{palette, data, width, height};\n\n")
	} else {
		e.b.WriteString("constexpr Image image{data, width, height};\n\n")
	}

	e.printf("} // namespace %s\n\n", e.ident)

	e.end()
}

// Marshal returns m encoded as source code in the given dialect. Symbol names
// are prefixed with identifier, normally the result of Identifier.
func Marshal(m image.Image, identifier string, d Dialect) ([]byte, error) {
	a, err := newAsset(m)
	if err != nil {
		return nil, err
	}

	e := encoder{
		a:     a,
		ident: identifier,
		guard: Guard(identifier),
	}

	switch d {
	case Plain:
		e.plain()
	case Struct:
		e.structured()
	case Constexpr:
		e.constexpr()
	default:
		return nil, ErrUnsupported
	}

	return e.b.Bytes(), nil
}

// Encode writes m to w as source code in the given dialect.
func Encode(w io.Writer, m image.Image, identifier string, d Dialect) error {
	b, err := Marshal(m, identifier, d)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
