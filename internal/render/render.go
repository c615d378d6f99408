// Package render produces the index document from the bundle template and the
// base dataset.
package render

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"

	"github.com/bayoss/landscape2/internal/datasets"
	"github.com/bayoss/landscape2/internal/foundation/errors"
	"github.com/bayoss/landscape2/internal/landscape"
)

// Renderer renders the index document. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
	md   goldmark.Markdown
}

// indexData is the template context of the index document.
type indexData struct {
	Foundation  string
	URL         string
	Description template.HTML
	Base        *datasets.Base
}

// New parses the index template.
func New(source []byte) (*Renderer, error) {
	tmpl, err := template.New("index").Option("missingkey=error").Parse(string(source))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to parse index template").Fatal().Build()
	}
	return &Renderer{tmpl: tmpl, md: goldmark.New()}, nil
}

// Index renders the index document. The settings description is converted
// from markdown; raw HTML in it is omitted.
func (r *Renderer) Index(ds *datasets.Datasets, s *landscape.Settings) ([]byte, error) {
	var desc bytes.Buffer
	if s.Description != "" {
		if err := r.md.Convert([]byte(s.Description), &desc); err != nil {
			return nil, errors.WrapError(err, errors.CategoryRender, "failed to render description").Fatal().Build()
		}
	}

	data := indexData{
		Foundation:  s.Foundation,
		URL:         s.URL,
		Description: template.HTML(desc.String()), //nolint:gosec // sanitized by goldmark
		Base:        ds.Base,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryRender, "failed to render index").Fatal().Build()
	}
	return buf.Bytes(), nil
}
