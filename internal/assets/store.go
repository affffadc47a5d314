// Package assets loads the static images embedded into proposals.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Well-known asset names.
const (
	Logo            = "logo.png"
	ComparisonChart = "comparison-chart.png"
)

// ErrUnsupportedImage reports data that is not a PNG, JPEG or GIF image.
var ErrUnsupportedImage = errors.New("unsupported image type")

var allowedMimeTypes = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/gif":  "gif",
}

// Asset is a decoded-enough image ready for embedding.
type Asset struct {
	Name        string
	ContentType string
	Extension   string
	Data        []byte
	Width       int
	Height      int
}

// Store reads assets from a directory. A missing directory is fine; every
// lookup then reports the asset as unavailable.
type Store struct {
	fsys   fs.FS
	root   string
	logger *slog.Logger
}

// NewStore returns a store rooted at dir.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{fsys: os.DirFS(dir), root: dir, logger: logger}
}

// NewStoreFS returns a store over an arbitrary file system.
func NewStoreFS(fsys fs.FS, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{fsys: fsys, root: ".", logger: logger}
}

// Load reads and sniffs the named asset. Missing or invalid files are logged
// and reported as unavailable.
func (s *Store) Load(name string) (Asset, bool) {
	if s == nil || s.fsys == nil {
		return Asset{}, false
	}
	clean := path.Clean(strings.TrimPrefix(filepath.ToSlash(name), "/"))
	if clean == "." || !fs.ValidPath(clean) {
		s.logger.Warn("asset path rejected", slog.String("asset", name))
		return Asset{}, false
	}
	data, err := fs.ReadFile(s.fsys, clean)
	if err != nil {
		s.logger.Warn("asset unavailable",
			slog.String("asset", clean),
			slog.String("dir", s.root),
			slog.Any("error", err),
		)
		return Asset{}, false
	}
	asset, err := Sniff(path.Base(clean), data)
	if err != nil {
		s.logger.Warn("asset skipped", slog.String("asset", clean), slog.Any("error", err))
		return Asset{}, false
	}
	return asset, true
}

// Sniff checks the magic bytes of data and reads its pixel dimensions.
func Sniff(name string, data []byte) (Asset, error) {
	head := data
	if len(head) > 261 {
		head = head[:261]
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, name)
	}
	ext, ok := allowedMimeTypes[kind.MIME.Value]
	if !ok {
		return Asset{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedImage, name, kind.MIME.Value)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Asset{}, fmt.Errorf("decode %s: %w", name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Asset{}, fmt.Errorf("%w: %s has no pixels", ErrUnsupportedImage, name)
	}
	return Asset{
		Name:        name,
		ContentType: kind.MIME.Value,
		Extension:   ext,
		Data:        data,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}
