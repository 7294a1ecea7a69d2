/*
Package header implements an encoder that writes an image as C or C++ source
so that it can be compiled directly into firmware.

Three dialects are supported. Plain writes bare arrays and dimension
constants. Struct additionally wraps the arrays in a small C aggregate. The
Constexpr dialect targets C++20 and places everything in a namespace, using
std::array and std::span in place of raw pointers.

Indexed images (*image.Paletted) are written as a palette of packed 32-bit
0xRRGGBBAA words and one byte per pixel. Direct images (*image.NRGBA) are
written as one packed word per pixel. Each output row holds one row of the
image.
*/
package header

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Dialect selects the flavour of source code written by Encode.
type Dialect int

const (
	// Plain writes bare const arrays.
	Plain Dialect = iota
	// Struct writes the arrays plus a typedef'd struct instance.
	Struct
	// Constexpr writes a C++ namespace of constexpr std::array values.
	Constexpr
)

var dialectNames = [...]string{
	Plain:     "plain",
	Struct:    "struct",
	Constexpr: "constexpr",
}

// MaxDimension is the largest width or height representable by the uint16_t
// dimension constants.
const MaxDimension = 1<<16 - 1

// ErrUnsupported is returned for unknown dialects and image types.
var ErrUnsupported = errors.New("header: unsupported dialect or image type")

// Valid reports whether d is a known dialect.
func (d Dialect) Valid() bool {
	return d >= 0 && int(d) < len(dialectNames)
}

func (d Dialect) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
	return dialectNames[d]
}

// ParseDialect returns the dialect with the given name.
func ParseDialect(s string) (Dialect, error) {
	for i, name := range dialectNames {
		if strings.EqualFold(s, name) {
			return Dialect(i), nil
		}
	}
	return 0, fmt.Errorf("header: unknown dialect %q", s)
}

// Dialects lists the dialect names in order.
func Dialects() []string {
	return append([]string(nil), dialectNames[:]...)
}

var (
	extension  = regexp.MustCompile(`\.[^/.]+$`)
	notAllowed = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// Identifier derives the symbol prefix from a file name by removing the
// extension and replacing anything that isn't a letter, digit or underscore
// with an underscore. Characters outside the Basic Multilingual Plane take two
// underscores, one per UTF-16 code unit. The result may be empty.
func Identifier(fileName string) string {
	return notAllowed.ReplaceAllStringFunc(extension.ReplaceAllString(fileName, ""), func(s string) string {
		if r, _ := utf8.DecodeRuneInString(s); r > 0xFFFF {
			return "__"
		}
		return "_"
	})
}

// Guard returns the include guard macro for the identifier.
func Guard(identifier string) string {
	return strings.ToUpper(identifier) + "_H"
}

// Filename returns the name of the header generated for fileName.
func Filename(fileName string, d Dialect) string {
	base := extension.ReplaceAllString(filepath.Base(fileName), "")
	switch d {
	case Struct:
		return base + "_img.h"
	case Constexpr:
		return base + "_img.hpp"
	default:
		return base + ".h"
	}
}
