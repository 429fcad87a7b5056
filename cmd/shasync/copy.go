package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/tqbf/shasync/pkg/manifest"
	"github.com/tqbf/shasync/pkg/paths"
	"github.com/tqbf/shasync/pkg/verify"
)

func copyCmd() *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "copy src to dst, verifying every file against the manifest",
		ArgsUsage: "<src> <dst>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "stage files and undo everything on failure",
			},
			&cli.StringFlag{
				Name:  "invalidate",
				Usage: "file under dst to delete if the copy fails, forcing a later retry",
			},
			&cli.StringSliceFlag{
				Name:  "require",
				Usage: "entry that must exist in src before copying (repeatable)",
			},
		},
		Action: copyAction,
	}
}

func copyAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: shasync copy <src> <dst>")
	}
	src, dst := c.Args().Get(0), c.Args().Get(1)

	if err := requireEntries(src, c.StringSlice("require")); err != nil {
		return err
	}

	ctx, cancel, _, m, err := setup(c)
	if err != nil {
		return err
	}
	defer cancel()

	opts := []verify.CopyOption{}
	if c.Bool("rollback") {
		opts = append(opts, verify.WithRollback())
	}

	var bar *pterm.ProgressbarPrinter
	if interactive() {
		bar, err = pterm.DefaultProgressbar.
			WithTotal(m.Len()).
			WithTitle("Copying").
			WithWriter(os.Stderr).
			Start()
		if err != nil {
			return err
		}
		opts = append(opts, verify.WithProgress(
			func(name string, _ manifest.Entry) {
				bar.UpdateTitle(filepath.Base(name))
				bar.Increment()
			},
		))
	}

	err = verify.CopyVerified(ctx, m, src, dst, opts...)
	if bar != nil {
		bar.Stop()
	}
	if err != nil {
		invalidate(dst, c.String("invalidate"))
		return fmt.Errorf("copy: %w", err)
	}

	pterm.Success.Printfln(
		"Copied %d files (%s) to %s",
		len(m.Files()), humanBytes(m.TotalSize()), dst,
	)
	return nil
}

// requireEntries checks that src looks like the tree we expect before
// anything is written to dst.
func requireEntries(src string, names []string) error {
	for _, name := range names {
		p, err := paths.Resolve(src, name)
		if err != nil {
			return fmt.Errorf("--require %s: %w", name, err)
		}
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf(
				"%s not found in the source directory", name,
			)
		}
	}
	return nil
}

func invalidate(dst, name string) {
	if name == "" {
		return
	}
	p, err := paths.Resolve(dst, name)
	if err != nil {
		slog.Error("invalidate", "path", name, "err", err)
		return
	}
	err = os.Remove(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to invalidate after copy error",
			"path", p, "err", err,
		)
		return
	}
	slog.Debug("invalidated", "path", p)
}
