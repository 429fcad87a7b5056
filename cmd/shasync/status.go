package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tqbf/shasync/pkg/verify"
)

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "cheaply check whether an install is up to date",
		ArgsUsage: "<root>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "probe",
				Usage: "representative file to check (default from config)",
			},
		},
		Action: statusAction,
	}
}

func statusAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: shasync status <root>")
	}
	root := c.Args().First()

	_, cancel, cfg, m, err := setup(c)
	if err != nil {
		return err
	}
	defer cancel()

	probe := cfg.ProbePath
	if c.IsSet("probe") {
		probe = c.String("probe")
	}

	ok, err := verify.IsUpToDateAt(m, root, probe)
	if err != nil {
		return fmt.Errorf("probe %s: %w", probe, err)
	}
	if ok {
		fmt.Fprintln(c.App.Writer, "Up to date.")
		return nil
	}
	fmt.Fprintln(c.App.Writer, "Stale: resync needed.")
	return cli.Exit("", 3)
}
