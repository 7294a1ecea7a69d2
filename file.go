package mcuimage

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"image"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/jiink/acmdev-mcu-image-converter/header"
	"github.com/jiink/acmdev-mcu-image-converter/palette"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is wrapped by errors from files that aren't decodable images.
var ErrDecode = errors.New("mcuimage: cannot decode image")

func decode(r io.Reader, opts Options) (image.Image, error) {
	m, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if opts.Width != 0 || opts.Height != 0 {
		// Nearest neighbour so no new colors are introduced
		m = imaging.Resize(m, opts.Width, opts.Height, imaging.NearestNeighbor)
	}

	return m, nil
}

// ConvertFile decodes the image in file and returns its header. If the
// Converter has a cache, an identical earlier conversion is returned without
// decoding the file again.
func (c *Converter) ConvertFile(file string, opts Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}

	b, err := ioutil.ReadFile(file)
	if err != nil {
		return "", err
	}

	name := filepath.Base(file)
	sum := fmt.Sprintf("%X", sha1.Sum(b))
	key := opts.key(header.Identifier(name))

	if c.db != nil {
		text, ok, err := c.db.FindAsset(sum, key)
		if err != nil {
			return "", err
		}
		if ok {
			c.logger.Printf("Using cached header for \"%s\"\n", file)
			return text, nil
		}
	}

	m, err := decode(bytes.NewReader(b), opts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", file, err)
	}

	text, err := Convert(m, name, opts)
	if err != nil {
		return "", err
	}
	c.logger.Printf("Converted \"%s\" (%dx%d, %s)\n", file, m.Bounds().Dx(), m.Bounds().Dy(), opts.Dialect)

	if c.db != nil {
		if err := c.db.AddAsset(sum, key, text); err != nil {
			return "", err
		}
	}

	return text, nil
}

// Preview writes the quantized form of the image in file to out. The format
// is chosen from the extension of out.
func (c *Converter) Preview(file, out string, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := decode(f, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}

	q, err := palette.GreedyQuantizer{Tree: opts.Tree}.Quantize(m, opts.ColorLimit, opts.Indexed)
	if err != nil {
		return err
	}

	if pm, ok := q.(*image.Paletted); ok {
		c.logger.Printf("Palette for \"%s\" has %d colors\n", file, len(pm.Palette))
	}

	return imaging.Save(q, out)
}
