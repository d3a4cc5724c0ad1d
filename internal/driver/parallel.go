package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"ash/internal/diag"
	"ash/internal/source"
)

// CheckFiles compiles every path independently and in parallel, bounded
// by jobs (GOMAXPROCS when jobs <= 0). Results are in input order. A file
// that cannot be read yields a result carrying one IOLoadFileError
// diagnostic; the returned error is only set for cancellation or an
// internal failure.
func CheckFiles(ctx context.Context, paths []string, jobs int, opts Options) ([]*Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	opts.Cache = nil

	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fs := source.NewFileSet()
			id, err := fs.Load(path)
			if err != nil {
				results[i] = loadFailure(fs, path, err, opts.MaxDiagnostics)
				return nil
			}
			res, err := compileFile(gctx, fs, fs.Get(id), opts)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func loadFailure(fs *source.FileSet, path string, err error, maxDiagnostics int) *Result {
	file := fs.Get(fs.AddVirtual(path, nil))
	bag := diag.NewBag(maxDiagnostics)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: file.ID}, "failed to load file: "+err.Error()))
	return &Result{FileSet: fs, File: file, Bag: bag}
}
