package tabinspect

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
)

// Loader loads a Dataset from the first existing candidate path, falling
// back to a Generator when none exists.
//
// The typical usage pattern is:
//
//	d, err := tabinspect.NewLoader().
//		AddPaths("bookings.csv", "data.csv").
//		WithFallback(tabinspect.NewBookingGenerator(50, 42)).
//		Load(ctx)
type Loader struct {
	// paths are the candidate paths, in priority order
	paths []string
	// fallback produces data when no candidate exists; nil disables it
	fallback Generator
	// fsys resolves candidates; nil means the OS filesystem
	fsys fs.FS
	// logger receives load progress
	logger *slog.Logger
}

// NewLoader creates a loader with no candidates and no fallback.
func NewLoader() *Loader {
	return &Loader{
		paths:  make([]string, 0),
		logger: slog.New(slog.DiscardHandler),
	}
}

// AddPath appends a candidate path.
func (l *Loader) AddPath(path string) *Loader {
	l.paths = append(l.paths, path)
	return l
}

// AddPaths appends candidate paths, keeping their order.
func (l *Loader) AddPaths(paths ...string) *Loader {
	l.paths = append(l.paths, paths...)
	return l
}

// WithFallback sets the generator used when no candidate exists.
func (l *Loader) WithFallback(g Generator) *Loader {
	l.fallback = g
	return l
}

// WithFS resolves candidate paths inside fsys instead of the OS filesystem.
func (l *Loader) WithFS(fsys fs.FS) *Loader {
	l.fsys = fsys
	return l
}

// WithLogger sets the logger. A nil logger discards output.
func (l *Loader) WithLogger(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l.logger = logger
	return l
}

// Paths returns the candidate paths.
func (l *Loader) Paths() []string {
	return append([]string(nil), l.paths...)
}

// Load parses the first candidate that exists. A candidate that exists but
// cannot be parsed is an error; the loader does not move on to the next one.
// When no candidate exists, Load uses the fallback generator or returns a
// *DataNotFoundError.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	v := newValidator(l.fsys)

	for _, path := range l.paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		found, err := v.exists(path)
		if err != nil {
			return nil, NewErrorContext("load", path).Error(err)
		}
		if !found {
			l.logger.Debug("candidate not found", "path", path)
			continue
		}

		d, err := l.loadFile(ctx, v, path)
		if err != nil {
			return nil, err
		}
		l.logger.Info("dataset loaded", "path", path, "rows", d.Len(), "columns", d.Width())
		return d, nil
	}

	if l.fallback == nil {
		l.logger.Error("no data source found", "candidates", l.paths)
		return nil, &DataNotFoundError{Candidates: l.Paths()}
	}

	d := l.fallback.Generate()
	l.logger.Warn("no candidate file found, using generated data", "rows", d.Len())
	return d, nil
}

// loadFile opens and parses a single candidate
func (l *Loader) loadFile(ctx context.Context, v *validator, path string) (*Dataset, error) {
	errCtx := NewErrorContext("load", path)
	if err := v.validateFormat(path); err != nil {
		return nil, errCtx.Error(err)
	}

	reader, err := l.open(path)
	if err != nil {
		return nil, errCtx.Error(err)
	}
	defer func() {
		_ = reader.Close() // Ignore close error on a read-only file
	}()

	f := newFile(path)
	d, err := newParser(f.fileType, f.compression, datasetNameFromPath(path)).parse(ctx, reader)
	if err != nil {
		return nil, errCtx.WithDetails(f.fileType.String()).Error(err)
	}
	d.source = path
	return d, nil
}

// open opens path on the configured filesystem
func (l *Loader) open(path string) (io.ReadCloser, error) {
	if l.fsys != nil {
		return l.fsys.Open(path)
	}
	return os.Open(path) //nolint:gosec // User-provided path is necessary for file operations
}
