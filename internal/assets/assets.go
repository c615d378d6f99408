// Package assets provides the web application bundle: the index document
// template and the static files copied verbatim into the output tree.
package assets

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bayoss/landscape2/internal/foundation/errors"
)

// IndexFile is the index document template. It is rendered, never copied.
const IndexFile = "index.html"

// KeepFile is a placeholder that keeps the bundle directory in version control.
const KeepFile = ".keep"

// StaticPrefix is the prefix every built web asset lives under.
const StaticPrefix = "assets/"

//go:embed all:dist
var dist embed.FS

// Provider lists and reads bundle files by slash-separated relative path.
type Provider interface {
	List() ([]string, error)
	Read(path string) ([]byte, error)
}

// FSProvider serves a bundle from an fs.FS.
type FSProvider struct {
	fsys fs.FS
}

// FromFS wraps fsys as a Provider.
func FromFS(fsys fs.FS) *FSProvider {
	return &FSProvider{fsys: fsys}
}

// Embedded returns the bundle compiled into the binary.
func Embedded() *FSProvider {
	sub, err := fs.Sub(dist, "dist")
	if err != nil {
		panic(err)
	}
	return FromFS(sub)
}

// List returns every regular file in lexical order.
func (p *FSProvider) List() ([]string, error) {
	var paths []string
	err := fs.WalkDir(p.fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to list web assets").Build()
	}
	return paths, nil
}

// Read returns the content of a bundle file.
func (p *FSProvider) Read(path string) ([]byte, error) {
	data, err := fs.ReadFile(p.fsys, path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to read web asset").
			WithContext("path", path).
			Build()
	}
	return data, nil
}

// Check verifies the bundle contains built web assets.
func Check(p Provider) error {
	paths, err := p.List()
	if err != nil {
		return err
	}
	for _, path := range paths {
		if strings.HasPrefix(path, StaticPrefix) {
			return nil
		}
	}
	return errors.BuildError("web assets not found, please make sure they have been built").Build()
}

// Copy writes every bundle file except the index template and the keep file
// below outputDir, creating parent directories as needed. It returns the
// number of files written.
func Copy(p Provider, outputDir string) (int, error) {
	paths, err := p.List()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, path := range paths {
		if path == IndexFile || path == KeepFile {
			continue
		}
		data, err := p.Read(path)
		if err != nil {
			return n, err
		}
		dst := filepath.Join(outputDir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return n, errors.WrapError(err, errors.CategoryFileSystem, "failed to create asset directory").
				Fatal().
				WithContext("path", filepath.Dir(dst)).
				Build()
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return n, errors.WrapError(err, errors.CategoryFileSystem, "failed to copy asset").
				Fatal().
				WithContext("path", dst).
				Build()
		}
		n++
	}
	return n, nil
}
