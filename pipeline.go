package mcuimage

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/jiink/acmdev-mcu-image-converter/header"
)

var imageExtensions = map[string]bool{
	".bmp":  true,
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// ErrDuplicateOutput is returned by Scan when two images would be written to
// the same header, such as logo.png and logo.gif.
var ErrDuplicateOutput = errors.New("mcuimage: images share an output file")

// outputFile returns the header written for the image in file.
func outputFile(file string, d header.Dialect) string {
	return filepath.Join(filepath.Dir(file), header.Filename(file, d))
}

func listImages(base string, d header.Dialect) ([]string, error) {
	var files []string
	seen := make(map[string]string)
	err := filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
		if info.Name()[0] == '.' && file != base {
			if info.Mode().IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Ignore anything that isn't a normal file
		if !info.Mode().IsRegular() {
			return nil
		}

		if !imageExtensions[strings.ToLower(filepath.Ext(file))] {
			return nil
		}

		out := outputFile(file, d)
		if prev, ok := seen[out]; ok {
			return fmt.Errorf("%w: \"%s\" and \"%s\" both produce \"%s\"", ErrDuplicateOutput, prev, file, out)
		}
		seen[out] = file
		files = append(files, file)

		return nil
	})
	return files, err
}

// findImages lists every image first so that output collisions are found
// before any header is written.
func (c *Converter) findImages(ctx context.Context, base string, d header.Dialect) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)

		files, err := listImages(base, d)
		if err != nil {
			errc <- err
			return
		}

		for _, file := range files {
			select {
			case out <- file:
			case <-ctx.Done():
				errc <- errors.New("walk cancelled")
				return
			}
		}
	}()
	return out, errc, nil
}

func (c *Converter) imageWorker(ctx context.Context, in <-chan string, opts Options) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			text, err := c.ConvertFile(file, opts)
			if err != nil {
				// Undecodable images are skipped rather than failing the scan
				if errors.Is(err, ErrDecode) {
					c.logger.Printf("Skipping \"%s\": %s\n", file, err)
					continue
				}
				errc <- err
				return
			}

			out := outputFile(file, opts.Dialect)
			if err := ioutil.WriteFile(out, []byte(text), 0644); err != nil {
				errc <- err
				return
			}
			c.logger.Printf("Wrote \"%s\"\n", out)
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan converts every image found under path, writing each header next to
// its source image.
func (c *Converter) Scan(path string, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findImages(ctx, dir, opts.Dialect)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < runtime.NumCPU(); i++ {
		errc, err := c.imageWorker(ctx, files, opts)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
