package reconcile

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/s22625/fwbuild/internal/gh"
	"github.com/s22625/fwbuild/internal/model"
)

// Fetch downloads the well-known artifact of a successful run into the output
// directory. A missing named artifact is recovered by downloading every
// artifact of the run instead.
func (e *Engine) Fetch(ctx context.Context, run *model.Run) (*FetchResult, error) {
	dir := e.opts.OutDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, newError(KindArtifactDownloadFailure, err, "cannot create output directory %s", dir)
	}

	res := &FetchResult{Dir: dir, Name: e.opts.Artifact}
	err := e.host.DownloadArtifact(ctx, run.ID, e.opts.Artifact, dir)
	if err != nil {
		if !errors.Is(err, gh.ErrArtifactNotFound) {
			return nil, newError(KindArtifactDownloadFailure, err, "cannot download %s from run %d", e.opts.Artifact, run.ID)
		}
		e.log.Warnf("artifact %s not found on run %d, downloading all artifacts%s", e.opts.Artifact, run.ID, e.availableArtifacts(ctx, run.ID))
		res.Fallback = true
		if err := e.host.DownloadAllArtifacts(ctx, run.ID, dir); err != nil {
			return nil, newError(KindArtifactDownloadFailure, err, "cannot download artifacts from run %d", run.ID)
		}
	}

	files, err := listFiles(dir)
	if err != nil {
		e.log.Debugf("cannot list %s: %v", dir, err)
	}
	res.Files = files
	e.log.Successf("artifacts written to %s", dir)
	return res, nil
}

// availableArtifacts describes the unexpired artifacts of a run for the
// fallback warning. Listing is best effort.
func (e *Engine) availableArtifacts(ctx context.Context, runID int64) string {
	artifacts, err := e.host.ListArtifacts(ctx, runID)
	if err != nil {
		e.log.Debugf("cannot list artifacts of run %d: %v", runID, err)
		return ""
	}
	var names []string
	for _, a := range artifacts {
		if !a.Expired {
			names = append(names, a.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return " (available: " + strings.Join(names, ", ") + ")"
}

// listFiles returns the regular files under dir, relative and sorted
func listFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(files)
	return files, err
}
