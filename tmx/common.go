package tmx

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/eak1mov/go-libtmx/tmx/spec"
)

type GID = spec.GID
type Transform = spec.Transform

var (
	ErrMalformedDocument         = spec.ErrMalformedDocument
	ErrLayerDecodeFailed         = spec.ErrLayerDecodeFailed
	ErrNestedTemplateUnsupported = spec.ErrNestedTemplateUnsupported
)

var ErrTilesetLoadFailed = errors.New("tileset load failed")
var ErrUnresolvedTileReference = errors.New("unresolved tile reference")
var ErrUnsupportedOrientation = errors.New("unsupported orientation")

// ReadFunc returns the content of the document at a slash-separated path.
// References inside a document are joined with the directory of that
// document's path before they are passed back in.
type ReadFunc = func(name string) ([]byte, error)

// FromDir reads documents relative to dir on the local file system.
// Paths may climb above dir with "..".
func FromDir(dir string) ReadFunc {
	return func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	}
}

// FromFS reads documents from fsys. Paths must stay inside it.
func FromFS(fsys fs.FS) ReadFunc {
	return func(name string) ([]byte, error) {
		return fs.ReadFile(fsys, name)
	}
}

// resolvePath joins a reference found in the document at docPath.
func resolvePath(docPath, ref string) string {
	if path.IsAbs(ref) {
		return path.Clean(ref)
	}
	return path.Join(path.Dir(docPath), ref)
}

type config struct {
	Logger      *slog.Logger
	Strict      bool
	Concurrency int
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.Logger = logger }
}

// WithStrict turns unresolved gids and malformed chunks into errors instead
// of warnings in the Report.
func WithStrict(strict bool) Option {
	return func(c *config) { c.Strict = strict }
}

// WithConcurrency sets how many tile layers are decoded at once.
func WithConcurrency(n int) Option {
	return func(c *config) { c.Concurrency = max(n, 1) }
}
