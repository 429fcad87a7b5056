package verify

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tqbf/shasync/pkg/checksum"
	"github.com/tqbf/shasync/pkg/manifest"
	"github.com/tqbf/shasync/pkg/paths"
)

type CopyOption func(*copyOpts)

type copyOpts struct {
	rollback bool
	progress func(name string, e manifest.Entry)
}

// WithRollback makes CopyVerified all-or-nothing: files are staged
// beside their destination and renamed into place only once every file
// has verified. On failure the staged files and any directories this
// call created are removed.
func WithRollback() CopyOption {
	return func(o *copyOpts) { o.rollback = true }
}

// WithProgress registers fn to be called after each entry is in place.
func WithProgress(fn func(name string, e manifest.Entry)) CopyOption {
	return func(o *copyOpts) { o.progress = fn }
}

// CopyVerified materializes every manifest entry from src into dst,
// hashing each source file as it is written and failing on the first
// mismatch. Without WithRollback, files copied before a failure are left
// in place, and so is the partially written file that failed.
func CopyVerified(
	ctx context.Context,
	m *manifest.Manifest,
	src, dst string,
	opts ...CopyOption,
) (err error) {
	var o copyOpts
	for _, opt := range opts {
		opt(&o)
	}

	ctx, span := tracer.Start(ctx, "verify.copy")
	defer span.End()
	span.SetAttributes(
		attribute.Int("copy.entries", m.Len()),
		attribute.Bool("copy.rollback", o.rollback),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "copy failed")
		}
	}()

	c := &copier{m: m, src: src, dst: dst, opts: o}
	if o.rollback {
		defer func() {
			if err != nil {
				c.undo()
			}
		}()
	}

	if err := c.makeDirs(ctx); err != nil {
		return err
	}
	if err := c.copyFiles(ctx); err != nil {
		return err
	}
	return c.commit()
}

type staged struct {
	tmp, final string
}

type copier struct {
	m        *manifest.Manifest
	src, dst string
	opts     copyOpts

	createdDirs []string
	staged      []staged
}

func (c *copier) makeDirs(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.opts.rollback {
		dst := filepath.Clean(c.dst)
		c.createdDirs = append(
			c.createdDirs, missingDirs(filepath.Dir(dst), dst)...,
		)
	}
	if err := os.MkdirAll(c.dst, 0755); err != nil {
		return err
	}

	for _, name := range c.m.Dirs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		full, err := paths.Resolve(c.dst, name)
		if err != nil {
			return pathErr(name, fmt.Errorf("%w: %w", ErrUnsafePath, err))
		}
		if c.opts.rollback {
			c.createdDirs = append(
				c.createdDirs, missingDirs(c.dst, full)...,
			)
		}
		if err := os.MkdirAll(full, 0755); err != nil {
			return pathErr(name, err)
		}
		c.report(name)
	}
	return nil
}

func (c *copier) copyFiles(ctx context.Context) error {
	for _, name := range c.m.Files() {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, _ := c.m.Lookup(name)

		srcPath, err := paths.Resolve(c.src, name)
		if err != nil {
			return pathErr(name, fmt.Errorf("%w: %w", ErrUnsafePath, err))
		}
		dstPath, err := paths.Resolve(c.dst, name)
		if err != nil {
			return pathErr(name, fmt.Errorf("%w: %w", ErrUnsafePath, err))
		}

		if err := c.copyFile(name, entry, srcPath, dstPath); err != nil {
			return err
		}
		slog.Debug("copied", "path", name, "size", entry.Size)
		if !c.opts.rollback {
			c.report(name)
		}
	}
	return nil
}

func (c *copier) copyFile(
	name string,
	entry manifest.Entry,
	srcPath, dstPath string,
) error {
	var (
		out *os.File
		err error
	)
	if c.opts.rollback {
		out, err = os.CreateTemp(
			filepath.Dir(dstPath), ".shasync-*",
		)
		if err == nil {
			c.staged = append(c.staged, staged{
				tmp: out.Name(), final: dstPath,
			})
		}
	} else {
		out, err = os.Create(dstPath)
	}
	if err != nil {
		return pathErr(name, err)
	}

	sum, copyErr := checksum.DigestFile(
		srcPath, checksum.NewWriterSink(out),
	)
	closeErr := out.Close()
	if copyErr != nil {
		return pathErr(name, copyErr)
	}
	if closeErr != nil {
		return pathErr(name, closeErr)
	}
	if sum != entry.Hash {
		return pathErr(name, fmt.Errorf(
			"%w: sha %s, want %s",
			ErrMismatchedContent, sum, entry.Hash,
		))
	}
	return nil
}

func (c *copier) commit() error {
	for i, s := range c.staged {
		if err := os.Rename(s.tmp, s.final); err != nil {
			// Earlier renames already replaced their targets.
			c.staged = c.staged[i:]
			return fmt.Errorf("commit %s: %w", s.final, err)
		}
		c.report(c.relName(s.final))
	}
	c.staged = nil
	return nil
}

func (c *copier) undo() {
	for _, s := range c.staged {
		if err := os.Remove(s.tmp); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			slog.Warn("rollback remove failed",
				"path", s.tmp, "err", err,
			)
		}
	}
	dirs := slices.Clone(c.createdDirs)
	slices.Reverse(dirs)
	for _, d := range dirs {
		if err := os.Remove(d); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			slog.Warn("rollback rmdir failed",
				"path", d, "err", err,
			)
		}
	}
}

func (c *copier) report(name string) {
	if c.opts.progress == nil {
		return
	}
	entry, _ := c.m.Lookup(name)
	c.opts.progress(name, entry)
}

func (c *copier) relName(full string) string {
	rel, err := filepath.Rel(c.dst, full)
	if err != nil {
		return full
	}
	return filepath.ToSlash(rel)
}

// missingDirs lists full and its ancestors below root that do not exist
// yet, shallowest first.
func missingDirs(root, full string) []string {
	root = filepath.Clean(root)

	var missing []string
	for p := full; p != root && paths.IsWithinDir(root, p); p = filepath.Dir(p) {
		if _, err := os.Lstat(p); err == nil {
			break
		}
		missing = append(missing, p)
	}
	slices.Reverse(missing)
	return missing
}
