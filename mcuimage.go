/*
Package mcuimage converts images into C and C++ headers so that pixel data can
be compiled into microcontroller firmware.

An image is optionally reduced to an indexed palette by package palette and
then written out by package header. Converter wraps that with file decoding,
an optional SQLite cache of previously generated headers and a concurrent
directory scan.
*/
package mcuimage

import (
	"errors"
	"fmt"
	"image"
	"log"
	"strconv"
	"strings"

	"github.com/jiink/acmdev-mcu-image-converter/header"
	"github.com/jiink/acmdev-mcu-image-converter/palette"
)

// ErrInvalidConfig is wrapped by any error returned from Options.Validate.
var ErrInvalidConfig = errors.New("mcuimage: invalid configuration")

// Options controls a single conversion.
type Options struct {
	// ColorLimit is the maximum palette size, 1 to 256. It is only used
	// when Indexed is set.
	ColorLimit int
	// Indexed selects a palette plus one index byte per pixel rather than
	// one packed RGBA word per pixel.
	Indexed bool
	Dialect header.Dialect
	// Tree uses a k-d tree for nearest color searches. The output is the
	// same either way.
	Tree bool
	// Width and Height resize a decoded file before conversion. Zero
	// preserves the aspect ratio, both zero leaves the image alone.
	Width, Height int
}

// Validate checks the options before any work is done.
func (o Options) Validate() error {
	if o.Indexed && (o.ColorLimit < 1 || o.ColorLimit > palette.MaxColors) {
		return fmt.Errorf("%w: color limit %d is not between 1 and %d", ErrInvalidConfig, o.ColorLimit, palette.MaxColors)
	}
	if !o.Dialect.Valid() {
		return fmt.Errorf("%w: unknown dialect %s", ErrInvalidConfig, o.Dialect)
	}
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidConfig, o.Width, o.Height)
	}
	return nil
}

// key identifies the output produced for a given identifier.
func (o Options) key(identifier string) string {
	limit := o.ColorLimit
	if !o.Indexed {
		limit = 0
	}
	return strings.Join([]string{
		identifier,
		o.Dialect.String(),
		strconv.FormatBool(o.Indexed),
		strconv.Itoa(limit),
		strconv.Itoa(o.Width) + "x" + strconv.Itoa(o.Height),
	}, "|")
}

// Convert returns the header for m. Symbol names are derived from fileName.
func Convert(m image.Image, fileName string, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	if b := m.Bounds(); b.Dx() > header.MaxDimension || b.Dy() > header.MaxDimension {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels in one dimension", ErrInvalidConfig, b.Dx(), b.Dy(), header.MaxDimension)
	}

	q, err := palette.GreedyQuantizer{Tree: opts.Tree}.Quantize(m, opts.ColorLimit, opts.Indexed)
	if err != nil {
		return "", err
	}

	b, err := header.Marshal(q, header.Identifier(fileName), opts.Dialect)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Converter converts image files, optionally caching the results.
type Converter struct {
	db     *AssetDB
	logger *log.Logger
}

// New returns a Converter. db may be nil to disable caching.
func New(db *AssetDB, logger *log.Logger) *Converter {
	return &Converter{
		db:     db,
		logger: logger,
	}
}
