// Package logos resolves item logo references into normalized SVG documents
// identified by the SHA-256 digest of their content.
package logos

import (
	"context"
	_ "crypto/sha256" // registers the digest algorithm
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"

	"github.com/bayoss/landscape2/internal/cache"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/httpapi"
	"github.com/bayoss/landscape2/internal/logfields"
)

// Dir is the logos directory inside the output tree.
const Dir = "logos"

// Logo is a normalized logo and the hex SHA-256 of its bytes.
type Logo struct {
	Digest string
	SVG    []byte
}

// FileName is the output file name of the logo.
func (l *Logo) FileName() string { return l.Digest + ".svg" }

// Ref is the logo reference stored on items, relative to the output root.
func (l *Logo) Ref() string { return path.Join(Dir, l.FileName()) }

// Resolver turns logo file references into Logo values. It is safe for
// concurrent use.
type Resolver struct {
	source Source
	store  cache.Store
	client *httpapi.Client
}

// NewResolver creates a resolver over src. Remote logos are cached in store.
func NewResolver(src Source, store cache.Store, client *httpapi.Client) (*Resolver, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		client = httpapi.New("")
	}
	return &Resolver{source: src, store: store, client: client}, nil
}

// Resolve reads, normalizes and digests the logo named by ref.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*Logo, error) {
	if ref == "" {
		return nil, errors.ValidationError("logo reference is empty").WithSeverity(errors.SeverityError).Build()
	}

	raw, err := r.read(ctx, ref)
	if err != nil {
		return nil, err
	}

	svg, err := Normalize(raw)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid logo").
			WithContext("logo", ref).
			Build()
	}
	return &Logo{Digest: digest.FromBytes(svg).Encoded(), SVG: svg}, nil
}

func (r *Resolver) read(ctx context.Context, ref string) ([]byte, error) {
	if r.source.Path != "" {
		return r.readLocal(ref)
	}
	return r.readRemote(ctx, ref)
}

func (r *Resolver) readLocal(ref string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, errors.ValidationError("logo reference escapes the logos directory").
			WithSeverity(errors.SeverityError).
			WithContext("logo", ref).
			Build()
	}
	p := filepath.Join(r.source.Path, clean)
	data, err := os.ReadFile(p)
	if err != nil {
		b := errors.FileSystemError("failed to read logo")
		if os.IsNotExist(err) {
			b = errors.NotFoundError("logo not found")
		}
		return nil, b.WithCause(err).WithContext("path", p).Build()
	}
	return data, nil
}

func (r *Resolver) readRemote(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.JoinPath(r.source.URL, ref)
	if err != nil {
		return nil, errors.ValidationError("invalid logo reference").
			WithSeverity(errors.SeverityError).
			WithCause(err).
			WithContext("logo", ref).
			Build()
	}

	key := "logo:" + u
	if r.store != nil {
		if data, ok, err := r.store.Get(ctx, key); err != nil {
			slog.Warn("Logo cache lookup failed", logfields.URL(u), logfields.Error(err))
		} else if ok {
			return data, nil
		}
	}

	req, err := r.client.NewRequest(ctx, u, nil)
	if err != nil {
		return nil, err
	}
	data, err := r.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := r.store.Put(ctx, key, data); err != nil {
			slog.Warn("Logo cache store failed", logfields.URL(u), logfields.Error(err))
		}
	}
	return data, nil
}
