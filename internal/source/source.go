// Package source reads the build inputs (landscape data, settings, logos)
// from a local path or an http(s) URL.
package source

import (
	"context"
	"os"

	"github.com/bayoss/landscape2/internal/config"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/httpapi"
)

// Fetcher reads the bytes behind a source reference.
type Fetcher struct {
	client *httpapi.Client
}

// New creates a Fetcher. A nil client gets a default httpapi.Client.
func New(client *httpapi.Client) *Fetcher {
	if client == nil {
		client = httpapi.New("")
	}
	return &Fetcher{client: client}
}

// Get returns the content of ref: a GET for http(s) references, a file read
// otherwise.
func (f *Fetcher) Get(ctx context.Context, ref string) ([]byte, error) {
	if ref == "" {
		return nil, errors.ValidationError("empty source reference").Build()
	}
	if config.IsURL(ref) {
		req, err := f.client.NewRequest(ctx, ref, nil)
		if err != nil {
			return nil, err
		}
		return f.client.Do(ctx, req)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		b := errors.FileSystemError("failed to read source file")
		if os.IsNotExist(err) {
			b = errors.NotFoundError("source file not found")
		}
		return nil, b.WithCause(err).WithContext("path", ref).Build()
	}
	return data, nil
}
