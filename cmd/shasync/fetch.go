package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "fetch the manifest and summarize it",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "list",
				Usage: "print every entry",
			},
		},
		Action: fetchAction,
	}
}

func fetchAction(c *cli.Context) error {
	_, cancel, cfg, m, err := setup(c)
	if err != nil {
		return err
	}
	defer cancel()

	w := c.App.Writer
	fmt.Fprintf(w, "Manifest: %s\n", cfg.ManifestURL)
	fmt.Fprintf(w,
		"  %d files, %d directories, %s\n",
		len(m.Files()), len(m.Dirs()), humanBytes(m.TotalSize()),
	)
	if !c.Bool("list") {
		return nil
	}

	var b strings.Builder
	for name, e := range m.All() {
		if e.IsDir() {
			fmt.Fprintf(&b, "  d %s/\n", name)
			continue
		}
		fmt.Fprintf(&b,
			"  f %s %s (%s)\n", e.Hash, name, humanBytes(e.Size),
		)
	}
	fmt.Fprint(w, b.String())
	return nil
}
