package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/tqbf/shasync/pkg/verify"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "verify every manifest entry under root",
		ArgsUsage: "<root>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Value: "text",
				Usage: "report format: text, json or yaml",
			},
		},
		Action: verifyAction,
	}
}

func verifyAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: shasync verify <root>")
	}
	root := c.Args().First()

	format := c.String("format")
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("--format must be text, json or yaml")
	}

	ctx, cancel, _, m, err := setup(c)
	if err != nil {
		return err
	}
	defer cancel()

	report, err := verify.VerifyTree(ctx, m, root)
	if err != nil {
		return fmt.Errorf("verify %s: %w", root, err)
	}

	if err := printReport(c.App.Writer, report, format); err != nil {
		return err
	}
	if !report.OK() {
		return fmt.Errorf(
			"%d of %d entries failed", len(report.Failures), report.Checked,
		)
	}
	return nil
}

func printReport(w io.Writer, r *verify.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(r)
	}

	var b strings.Builder
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "  FAIL %s\n", f.Error)
	}
	fmt.Fprintf(&b, "---\n")
	fmt.Fprintf(&b,
		"%d checked (%s verified), %d failed in %s\n",
		r.Checked, humanBytes(r.Bytes), len(r.Failures),
		r.Elapsed.Round(1e6),
	)
	_, err := io.WriteString(w, b.String())
	return err
}
