package manifest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/tqbf/shasync/pkg/checksum"
	"github.com/tqbf/shasync/pkg/paths"
)

type fileJob struct {
	relPath string
	absPath string
}

type hashResult struct {
	relPath string
	entry   Entry
	err     error
}

// Generate builds a manifest describing dir as it is on disk. Paths
// matching any exclude pattern are skipped, along with everything below
// an excluded directory. Symlinks and special files are ignored.
func Generate(
	dir string,
	excludes []string,
) (*Manifest, error) {
	matcher := paths.NewExcludeMatcher(excludes)

	entries := make(map[string]Entry)
	var jobs []fileJob
	err := filepath.WalkDir(
		dir,
		func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(dir, p)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if rel == "." {
				return nil
			}
			if matcher.Match(rel) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				entries[rel] = Directory(0)
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			jobs = append(jobs, fileJob{
				relPath: rel,
				absPath: p,
			})
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	workers := min(runtime.NumCPU(), len(jobs))
	if workers == 0 {
		return &Manifest{entries: entries}, nil
	}

	jobCh := make(chan fileJob, len(jobs))
	resultCh := make(chan hashResult, len(jobs))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hashWorker(jobCh, resultCh)
		}()
	}

	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	wg.Wait()
	close(resultCh)

	for r := range resultCh {
		if r.err != nil {
			return nil, r.err
		}
		entries[r.relPath] = r.entry
	}
	return &Manifest{entries: entries}, nil
}

func hashWorker(
	jobs <-chan fileJob,
	results chan<- hashResult,
) {
	for j := range jobs {
		entry, err := hashFile(j.absPath, j.relPath)
		results <- hashResult{j.relPath, entry, err}
	}
}

func hashFile(absPath, relPath string) (Entry, error) {
	var size uint64
	sink := checksum.SinkFunc(func(chunk []byte) error {
		size += uint64(len(chunk))
		return nil
	})

	sum, err := checksum.DigestFile(absPath, sink)
	if err != nil {
		return Entry{}, fmt.Errorf("hash %s: %w", relPath, err)
	}
	return File(size, sum), nil
}
