package main

import (
	"fmt"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	mcuimage "github.com/jiink/acmdev-mcu-image-converter"
	"github.com/jiink/acmdev-mcu-image-converter/header"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func conversionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "colors",
			Aliases: []string{"c"},
			EnvVars: []string{"MCUIMAGE_COLORS"},
			Value:   16,
			Usage:   "maximum palette size (1-256)",
		},
		&cli.BoolFlag{
			Name:  "direct",
			Usage: "write one RGBA word per pixel instead of a palette",
		},
		&cli.StringFlag{
			Name:    "dialect",
			Aliases: []string{"d"},
			EnvVars: []string{"MCUIMAGE_DIALECT"},
			Value:   header.Struct.String(),
			Usage:   "output dialect (" + strings.Join(header.Dialects(), ", ") + ")",
		},
		&cli.BoolFlag{
			Name:  "tree",
			Usage: "use a k-d tree for nearest color lookups",
		},
		&cli.IntFlag{
			Name:    "width",
			Aliases: []string{"x"},
			Usage:   "resize to this width first",
		},
		&cli.IntFlag{
			Name:    "height",
			Aliases: []string{"y"},
			Usage:   "resize to this height first",
		},
	}
}

func options(c *cli.Context) (mcuimage.Options, error) {
	d, err := header.ParseDialect(c.String("dialect"))
	if err != nil {
		return mcuimage.Options{}, err
	}

	opts := mcuimage.Options{
		ColorLimit: c.Int("colors"),
		Indexed:    !c.Bool("direct"),
		Dialect:    d,
		Tree:       c.Bool("tree"),
		Width:      c.Int("width"),
		Height:     c.Int("height"),
	}

	return opts, opts.Validate()
}

func newConverter(c *cli.Context) (*mcuimage.Converter, func(), error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	if c.String("db") == "" {
		return mcuimage.New(nil, logger), func() {}, nil
	}

	db, err := mcuimage.NewAssetDB(c.String("db"))
	if err != nil {
		return nil, nil, err
	}

	return mcuimage.New(db, logger), func() { db.Close() }, nil
}

func main() {
	app := cli.NewApp()

	app.Name = "mcuimage"
	app.Usage = "Convert images into C/C++ headers for microcontroller firmware"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"MCUIMAGE_DB"},
			Usage:   "path to conversion cache database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "convert",
			Usage:       "Convert an image into a header",
			Description: "The header is written to the current directory using a name derived from FILE, or to --output.",
			ArgsUsage:   "FILE",
			Flags: append(conversionFlags(), &cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file, - for stdout",
			}),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				opts, err := options(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				m, closeFunc, err := newConverter(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFunc()

				file := c.Args().First()
				text, err := m.ConvertFile(file, opts)
				if err != nil {
					return cli.Exit(err, 1)
				}

				out := c.String("output")
				if out == "" {
					out = header.Filename(file, opts.Dialect)
				}
				if out == "-" {
					fmt.Print(text)
					return nil
				}

				if err := ioutil.WriteFile(out, []byte(text), 0644); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "scan",
			Usage:       "Convert every image under a directory",
			Description: "Each header is written alongside its image.",
			ArgsUsage:   "DIRECTORY",
			Flags:       conversionFlags(),
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				opts, err := options(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				m, closeFunc, err := newConverter(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFunc()

				if err := m.Scan(c.Args().First(), opts); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "preview",
			Usage:       "Write the quantized image for inspection",
			Description: "The output format is chosen from the extension of OUTPUT.",
			ArgsUsage:   "FILE OUTPUT",
			Flags:       conversionFlags(),
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				opts, err := options(c)
				if err != nil {
					return cli.Exit(err, 1)
				}

				m, closeFunc, err := newConverter(c)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer closeFunc()

				if err := m.Preview(c.Args().Get(0), c.Args().Get(1), opts); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:  "purge",
			Usage: "Empty the conversion cache",
			Action: func(c *cli.Context) error {
				if c.String("db") == "" {
					return cli.Exit("no cache database given, use --db", 1)
				}

				db, err := mcuimage.NewAssetDB(c.String("db"))
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				n, err := db.Purge()
				if err != nil {
					return cli.Exit(err, 1)
				}
				fmt.Fprintf(os.Stderr, "Removed %d cached headers from %s\n", n, filepath.Base(c.String("db")))

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
