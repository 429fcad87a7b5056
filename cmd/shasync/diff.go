package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tqbf/shasync/pkg/manifest"
)

func diffCmd() *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "compare the remote manifest with a local directory",
		ArgsUsage: "<root>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "extra",
				Usage: "also list local paths the manifest does not know",
			},
		},
		Action: diffAction,
	}
}

func diffAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: shasync diff <root>")
	}
	root := c.Args().First()

	_, cancel, cfg, want, err := setup(c)
	if err != nil {
		return err
	}
	defer cancel()

	have, err := manifest.Generate(root, cfg.Excludes)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	d := manifest.Diff(want, have)
	var b strings.Builder
	for _, p := range d.Missing {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	for _, p := range d.Changed {
		fmt.Fprintf(&b, "  ~ %s\n", p)
	}
	if c.Bool("extra") {
		for _, p := range d.Extra {
			fmt.Fprintf(&b, "  + %s\n", p)
		}
	}

	if b.Len() == 0 {
		fmt.Fprintln(c.App.Writer, "Everything up to date.")
		return nil
	}

	fmt.Fprint(c.App.Writer, b.String())
	fmt.Fprintf(c.App.Writer, "---\n%d missing, %d changed, %d extra\n",
		len(d.Missing), len(d.Changed), len(d.Extra),
	)
	return nil
}
