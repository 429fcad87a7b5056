package verify

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tqbf/shasync/pkg/manifest"
)

type Failure struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
	err   error
}

func (f Failure) Err() error {
	return f.err
}

type Report struct {
	Root     string        `json:"root" yaml:"root"`
	Checked  int           `json:"checked" yaml:"checked"`
	Bytes    uint64        `json:"bytes" yaml:"bytes"`
	Failures []Failure     `json:"failures" yaml:"failures"`
	Elapsed  time.Duration `json:"elapsed_ns" yaml:"elapsed"`
}

func (r *Report) OK() bool {
	return len(r.Failures) == 0
}

// VerifyTree runs CheckPath over every entry in path order. Entries that
// are missing or differ are collected in the report; any other error
// stops the scan and is returned alongside the partial report.
func VerifyTree(
	ctx context.Context,
	m *manifest.Manifest,
	root string,
) (*Report, error) {
	ctx, span := tracer.Start(ctx, "verify.tree")
	defer span.End()

	start := time.Now()
	report := &Report{Root: root, Failures: []Failure{}}
	defer func() { report.Elapsed = time.Since(start) }()

	for name, entry := range m.All() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		err := CheckPath(m, root, name, nil)
		report.Checked++
		switch {
		case err == nil:
			if !entry.IsDir() {
				report.Bytes += entry.Size
			}
		case Stale(err):
			report.Failures = append(report.Failures, Failure{
				Path:  name,
				Error: err.Error(),
				err:   err,
			})
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "verify aborted")
			return report, err
		}
	}

	span.SetAttributes(
		attribute.Int("verify.checked", report.Checked),
		attribute.Int("verify.failures", len(report.Failures)),
	)
	return report, nil
}
