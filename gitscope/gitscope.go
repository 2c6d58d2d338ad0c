// Package gitscope narrows a batch run to the files a git worktree reports
// as changed.
package gitscope

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/teranos/jsdoc-builder/errors"
	"github.com/teranos/jsdoc-builder/logger"
	"github.com/teranos/jsdoc-builder/source"
)

// Changed returns the absolute paths of modified, added, renamed and
// untracked files in the repository enclosing dir whose extension is in
// extensions. Deleted files are left out. The result is sorted.
func Changed(dir string, extensions []string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.WithHint(
			errors.Wrapf(err, "open repository at %s", dir),
			"--changed needs to run inside a git worktree")
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get worktree")
	}
	status, err := wt.Status()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read worktree status")
	}

	root := wt.Filesystem.Root()
	var out []string
	for rel, fs := range status {
		if !changed(fs) {
			continue
		}
		path := filepath.Join(root, filepath.FromSlash(rel))
		if source.Recognized(path, extensions) {
			out = append(out, path)
		}
	}
	sort.Strings(out)

	logger.Debugw("Changed files", "root", root, logger.FieldCount, len(out))
	return out, nil
}

func changed(fs *git.FileStatus) bool {
	if fs.Worktree == git.Deleted || (fs.Staging == git.Deleted && fs.Worktree == git.Unmodified) {
		return false
	}
	for _, code := range []git.StatusCode{fs.Staging, fs.Worktree} {
		switch code {
		case git.Modified, git.Added, git.Renamed, git.Copied, git.Untracked:
			return true
		}
	}
	return false
}

// Within keeps the files that equal or live under one of roots. An empty
// roots list keeps everything.
func Within(files, roots []string) []string {
	if len(roots) == 0 {
		return files
	}
	abs := make([]string, 0, len(roots))
	for _, r := range roots {
		if a, err := filepath.Abs(r); err == nil {
			abs = append(abs, filepath.Clean(a))
		}
	}

	var out []string
	for _, f := range files {
		for _, r := range abs {
			if f == r || strings.HasPrefix(f, r+string(filepath.Separator)) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
