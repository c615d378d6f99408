package logos

import (
	"bytes"
	stdErrors "errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html"
)

// Normalization failures.
var (
	ErrEmptyLogo     = stdErrors.New("logo is empty")
	ErrNotSVG        = stdErrors.New("logo root element is not svg")
	ErrRasterLogo    = stdErrors.New("logo is a raster image")
	ErrEmbeddedImage = stdErrors.New("logo embeds a raster image")
	ErrTrailingData  = stdErrors.New("logo has content after the svg root element")
)

var rasterTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp", "image/bmp", "image/tiff"}

// Normalize returns the canonical form of an SVG document: the XML prolog,
// comments and doctype are stripped along with whitespace outside the root
// element, which must be <svg>. SVGs embedding raster images are rejected.
func Normalize(raw []byte) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyLogo
	}
	mime := mimetype.Detect(raw)
	for _, t := range rasterTypes {
		if mime.Is(t) {
			return nil, ErrRasterLogo
		}
	}

	z := html.NewTokenizer(bytes.NewReader(raw))
	z.AllowCDATA(true)

	var (
		out   bytes.Buffer
		depth int
		root  bool
		done  bool
	)
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if err := z.Err(); !stdErrors.Is(err, io.EOF) {
				return nil, err
			}
			break
		}
		// Raw must be copied before TagName, which lower-cases in place.
		tok := append([]byte(nil), z.Raw()...)

		switch tt {
		case html.CommentToken, html.DoctypeToken:
			continue
		case html.TextToken:
			if depth == 0 {
				if len(bytes.TrimSpace(tok)) > 0 {
					if done {
						return nil, ErrTrailingData
					}
					return nil, ErrNotSVG
				}
				continue
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if depth == 0 {
				if done {
					return nil, ErrTrailingData
				}
				if string(name) != "svg" {
					return nil, ErrNotSVG
				}
				root = true
			}
			if string(name) == "image" && hasAttr && embedsRaster(z) {
				return nil, ErrEmbeddedImage
			}
			if tt == html.StartTagToken {
				depth++
			} else if depth == 0 {
				done = true
			}
		case html.EndTagToken:
			if depth == 0 {
				return nil, ErrNotSVG
			}
			depth--
			if depth == 0 {
				done = true
			}
		}
		out.Write(tok)
	}

	if !root {
		return nil, ErrNotSVG
	}
	return out.Bytes(), nil
}

func embedsRaster(z *html.Tokenizer) bool {
	for {
		key, val, more := z.TagAttr()
		k := string(key)
		if k == "href" || k == "xlink:href" {
			v := strings.ToLower(strings.TrimSpace(string(val)))
			if strings.HasPrefix(v, "data:image/") && !strings.HasPrefix(v, "data:image/svg") {
				return true
			}
		}
		if !more {
			return false
		}
	}
}
