package logos

import (
	"github.com/bayoss/landscape2/internal/config"
	"github.com/bayoss/landscape2/internal/foundation/errors"
)

// Source is where logo files are read from: a local directory or a base URL.
type Source struct {
	Path string
	URL  string
}

// SourceFromConfig converts the configured logos source.
func SourceFromConfig(c config.LogosSource) Source {
	return Source{Path: c.Path, URL: c.URL}
}

// Validate checks that exactly one of Path and URL is set.
func (s Source) Validate() error {
	switch {
	case s.Path == "" && s.URL == "":
		return errors.ConfigError("logos source is required (path or url)").Build()
	case s.Path != "" && s.URL != "":
		return errors.ConfigError("logos source must be either a path or a url, not both").Build()
	case s.URL != "" && !config.IsURL(s.URL):
		return errors.ConfigError("logos url must be http(s)").WithContext("url", s.URL).Build()
	}
	return nil
}
