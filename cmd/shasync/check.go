package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tqbf/shasync/pkg/verify"
)

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "verify individual paths against the manifest",
		ArgsUsage: "<root> <path>...",
		Action:    checkAction,
	}
}

func checkAction(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("usage: shasync check <root> <path>...")
	}
	root := c.Args().First()

	_, cancel, _, m, err := setup(c)
	if err != nil {
		return err
	}
	defer cancel()

	w := c.App.Writer
	failed := 0
	for _, rel := range c.Args().Tail() {
		err := verify.CheckPath(m, root, rel, nil)
		switch {
		case err == nil:
			fmt.Fprintf(w, "  ok   %s\n", rel)
		case verify.Stale(err) || errors.Is(err, verify.ErrUnknownFile):
			fmt.Fprintf(w, "  FAIL %v\n", err)
			failed++
		default:
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d paths failed", failed, c.NArg()-1)
	}
	return nil
}
