package extension

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// Descriptor is a value object identifying one loadable extension module and
// where its source lives. Descriptors are rebuilt on every discovery pass and
// never modified after creation.
type Descriptor struct {
	identifier  string
	displayName string
	source      url.URL
}

// NewDescriptor creates a Descriptor whose identifier is derived from displayName
func NewDescriptor(displayName string, source *url.URL) (Descriptor, error) {
	if displayName == "" {
		return Descriptor{}, fmt.Errorf("extension name cannot be empty")
	}
	if source == nil || source.String() == "" {
		return Descriptor{}, fmt.Errorf("extension %q has no source location", displayName)
	}

	return Descriptor{
		identifier:  Slug(displayName),
		displayName: displayName,
		source:      *source,
	}, nil
}

// Identifier returns the persistence key of the extension
func (d Descriptor) Identifier() string {
	return d.identifier
}

// DisplayName returns the human readable extension name
func (d Descriptor) DisplayName() string {
	return d.displayName
}

// Source returns a copy of the raw-content location of the extension
func (d Descriptor) Source() *url.URL {
	u := d.source
	return &u
}

// String implements the Stringer interface
func (d Descriptor) String() string {
	return d.identifier
}

// Slug normalises a display name into an identifier: lower-cased, with every
// run of whitespace collapsed into a single hyphen. Distinct names may map to
// the same slug ("Home Button" and "home-button"); no attempt is made to
// disambiguate them.
func Slug(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	inSpace := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}

	return b.String()
}

// Identifiers returns the identifiers of the given descriptors, in order
func Identifiers(descriptors []Descriptor) []string {
	ids := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		ids = append(ids, d.identifier)
	}
	return ids
}
