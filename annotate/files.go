package annotate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/logger"
	"github.com/teranos/jsdoc-builder/source"
)

// AnnotateFile reads path, transforms it and writes it back when the text
// changed, keeping the file's mode. Read and write failures are fatal and
// marked errors.ErrSourceRead.
func AnnotateFile(ctx context.Context, path string, opts Options) (Result, error) {
	if logger.FieldsFromContext(ctx) == nil {
		ctx = logger.WithRunID(ctx, uuid.NewString())
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, readError(err, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, readError(err, path)
	}

	res, err := Transform(ctx, path, string(data), opts)
	if err != nil {
		return res, err
	}
	if !res.Changed {
		return res, nil
	}

	if err := os.WriteFile(path, []byte(res.Code), info.Mode().Perm()); err != nil {
		return res, errors.WithHint(
			errors.Mark(errors.Wrapf(err, "write %s", path), errors.ErrSourceRead),
			"check that the file is writable")
	}
	return res, nil
}

func readError(err error, path string) error {
	return errors.WithHint(
		errors.Mark(errors.Wrapf(err, "read %s", path), errors.ErrSourceRead),
		"check that the file exists and is readable")
}

// FileResult pairs a path with its outcome.
type FileResult struct {
	Path   string
	Result Result
	Err    error
}

// AnnotateFiles runs AnnotateFile over paths with at most concurrency units
// in flight. Config and provider client are resolved once and shared. A
// failing unit does not stop the others; results keep the order of paths.
func AnnotateFiles(ctx context.Context, paths []string, opts Options, concurrency int) ([]FileResult, error) {
	shared, err := Prepare(opts)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	logger.LoggerFromContext(ctx).Infow("Batch started", logger.FieldCount, len(paths))

	if concurrency <= 0 {
		concurrency = 4
	}
	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, path := range paths {
		g.Go(func() error {
			res, err := AnnotateFile(gctx, path, shared)
			results[i] = FileResult{Path: path, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// Expand turns files and directories into the list of recognised source
// files. Directories are walked, skipping node_modules and dot directories.
// Explicit file arguments are kept even when their extension is unknown.
func Expand(paths []string, extensions []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, readError(err, root)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if p != root && (name == "node_modules" || strings.HasPrefix(name, ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if source.Recognized(p, extensions) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", root)
		}
	}
	sort.Strings(out)
	return out, nil
}
