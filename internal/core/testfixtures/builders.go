package testfixtures

import (
	"fmt"
	"net/url"

	"kilometers.ai/loader/internal/core/domain/extension"
)

// DescriptorBuilder provides a builder pattern for creating test descriptors
type DescriptorBuilder struct {
	name    string
	rawRoot string
	file    string
}

// NewDescriptorBuilder creates a DescriptorBuilder with sensible defaults
func NewDescriptorBuilder() *DescriptorBuilder {
	return &DescriptorBuilder{
		name:    "home",
		rawRoot: "https://raw.example.com/extensions",
	}
}

// WithName sets the display name
func (b *DescriptorBuilder) WithName(name string) *DescriptorBuilder {
	b.name = name
	return b
}

// WithRawRoot sets the content mirror the source URL is built from
func (b *DescriptorBuilder) WithRawRoot(root string) *DescriptorBuilder {
	b.rawRoot = root
	return b
}

// WithFile overrides the file name; defaults to name + ".js"
func (b *DescriptorBuilder) WithFile(file string) *DescriptorBuilder {
	b.file = file
	return b
}

// Build creates the descriptor, panicking on invalid input
func (b *DescriptorBuilder) Build() extension.Descriptor {
	file := b.file
	if file == "" {
		file = b.name + ".js"
	}
	u, err := url.Parse(fmt.Sprintf("%s/%s", b.rawRoot, url.PathEscape(file)))
	if err != nil {
		panic(fmt.Sprintf("testfixtures: invalid source url: %v", err))
	}
	d, err := extension.NewDescriptor(b.name, u)
	if err != nil {
		panic(fmt.Sprintf("testfixtures: invalid descriptor: %v", err))
	}
	return d
}

// Descriptors builds one default descriptor per name
func Descriptors(names ...string) []extension.Descriptor {
	out := make([]extension.Descriptor, 0, len(names))
	for _, n := range names {
		out = append(out, NewDescriptorBuilder().WithName(n).Build())
	}
	return out
}

// DescriptorsAt builds descriptors whose sources live under rawRoot
func DescriptorsAt(rawRoot string, names ...string) []extension.Descriptor {
	out := make([]extension.Descriptor, 0, len(names))
	for _, n := range names {
		out = append(out, NewDescriptorBuilder().WithName(n).WithRawRoot(rawRoot).Build())
	}
	return out
}
