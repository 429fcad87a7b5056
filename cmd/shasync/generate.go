package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tqbf/shasync/pkg/manifest"
)

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "write a manifest describing a local directory",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "exclude pattern (repeatable, defaults to the configured excludes)",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "title line for the manifest preamble",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "write to file instead of stdout",
			},
		},
		Action: generateAction,
	}
}

func generateAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: shasync generate <dir>")
	}
	dir := c.Args().First()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	excludes := cfg.Excludes
	if c.IsSet("exclude") {
		excludes = c.StringSlice("exclude")
	}

	start := time.Now()
	m, err := manifest.Generate(dir, excludes)
	if err != nil {
		return fmt.Errorf("generate %s: %w", dir, err)
	}
	slog.Debug("generated",
		"dir", dir,
		"entries", m.Len(),
		"bytes", m.TotalSize(),
		"elapsed", time.Since(start),
	)

	title := c.String("title")
	if title == "" {
		title = dir
	}

	var w io.Writer = c.App.Writer
	if out := c.String("output"); out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		bw := bufio.NewWriter(f)
		if err := manifest.Write(bw, m, title); err != nil {
			return err
		}
		if err := bw.Flush(); err != nil {
			return err
		}
		return f.Close()
	}
	return manifest.Write(w, m, title)
}
