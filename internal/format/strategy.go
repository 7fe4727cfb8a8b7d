// Package format selects an encode policy for a decoded image format.
package format

import (
	"image"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const jpegQuality = 85

// EncodeFunc writes the encoded form of an image.
type EncodeFunc func(w io.Writer, m image.Image) error

// Policy is the encode strategy chosen for a source format: how to encode
// the pixels and which extension the output file gets.
type Policy struct {
	// Name of the target format family, e.g. "jpeg".
	Name string

	encode EncodeFunc
	// extension maps the source extension to the output extension.
	extension func(srcExt string) string
}

// Encode writes m to w using the policy's target format.
func (p Policy) Encode(w io.Writer, m image.Image) error {
	return p.encode(w, m)
}

// Extension returns the output extension for a source file extension.
func (p Policy) Extension(srcExt string) string {
	return p.extension(srcExt)
}

type rule struct {
	matches func(format string) bool
	policy  Policy
}

// Registry maps a detected source format to an encode policy. Selection is a
// pure function: rules are evaluated in order and an unconditional jpeg
// fallback ends the chain, so a lookup never fails.
type Registry struct {
	rules    []rule
	fallback Policy
}

// NewRegistry builds the registry with the built-in jpeg, png and webp
// policies. Any other decodable format is re-encoded as jpeg with a .jpg
// extension.
func NewRegistry() *Registry {
	preserve := func(srcExt string) string { return srcExt }

	jpegPolicy := Policy{
		Name: "jpeg",
		encode: func(w io.Writer, m image.Image) error {
			return imaging.Encode(w, m, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
		},
		extension: preserve,
	}
	pngPolicy := Policy{
		Name: "png",
		encode: func(w io.Writer, m image.Image) error {
			return imaging.Encode(w, m, imaging.PNG)
		},
		extension: preserve,
	}
	webpPolicy := Policy{
		Name: "webp",
		encode: func(w io.Writer, m image.Image) error {
			return webp.Encode(w, m, &webp.Options{Quality: 80})
		},
		extension: preserve,
	}
	fallback := Policy{
		Name:      "jpeg",
		encode:    jpegPolicy.encode,
		extension: func(string) string { return ".jpg" },
	}

	oneOf := func(names ...string) func(string) bool {
		return func(format string) bool {
			for _, n := range names {
				if format == n {
					return true
				}
			}
			return false
		}
	}

	return &Registry{
		rules: []rule{
			{matches: oneOf("jpeg", "jpg"), policy: jpegPolicy},
			{matches: oneOf("png"), policy: pngPolicy},
			{matches: oneOf("webp"), policy: webpPolicy},
		},
		fallback: fallback,
	}
}

// PolicyFor returns the encode policy for a detected format name.
// The lookup is case-insensitive and always yields a policy.
func (r *Registry) PolicyFor(format string) Policy {
	format = strings.ToLower(strings.TrimSpace(format))

	for _, rule := range r.rules {
		if rule.matches(format) {
			return rule.policy
		}
	}

	return r.fallback
}
