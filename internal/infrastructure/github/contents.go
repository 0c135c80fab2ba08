package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	apphttp "kilometers.ai/loader/internal/application/http"
	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// Defaults for the published extension directory
const (
	DefaultAPIRoot = "https://api.github.com"
	DefaultRawHost = "https://raw.githubusercontent.com"
	DefaultPattern = "*.js"
)

// errNotList marks a contents payload that is not a directory listing
var errNotList = errors.New("response is not a directory listing")

// Repository locates the directory that publishes extensions
type Repository struct {
	Owner  string
	Name   string
	Branch string
	Path   string
	// RawRoot overrides the content mirror; empty derives it from the fields above.
	RawRoot string
}

// ContentsPath returns the contents API path for the directory
func (r Repository) ContentsPath() string {
	return path.Join("/repos", r.Owner, r.Name, "contents", r.Path)
}

// ContentsQuery pins the listing to the configured branch
func (r Repository) ContentsQuery() map[string]string {
	if r.Branch == "" {
		return nil
	}
	return map[string]string{"ref": r.Branch}
}

// RawBase returns the mirror every file URL is built from
func (r Repository) RawBase() string {
	if r.RawRoot != "" {
		return strings.TrimRight(r.RawRoot, "/")
	}
	branch := r.Branch
	if branch == "" {
		branch = "HEAD"
	}
	return DefaultRawHost + path.Join("/", r.Owner, r.Name, branch, r.Path)
}

// Validate checks the fields the contents endpoint needs
func (r Repository) Validate() error {
	if r.Owner == "" || r.Name == "" {
		return fmt.Errorf("repository owner and name are required")
	}
	return nil
}

// ContentEntry is the part of a contents API entry the loader reads
type ContentEntry struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
}

// ContentsSource discovers extensions from a repository directory listing
type ContentsSource struct {
	client   *apphttp.RepositoryClient
	repo     Repository
	patterns []string
	logger   ports.Logger
}

// NewContentsSource validates the script patterns and builds a source
func NewContentsSource(client *apphttp.RepositoryClient, repo Repository, patterns []string, logger ports.Logger) (*ContentsSource, error) {
	if err := repo.Validate(); err != nil {
		return nil, err
	}
	if len(patterns) == 0 {
		patterns = []string{DefaultPattern}
	}
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid script pattern %q", p)
		}
	}
	return &ContentsSource{client: client, repo: repo, patterns: patterns, logger: logger}, nil
}

// Repository returns the directory being listed
func (s *ContentsSource) Repository() Repository {
	return s.repo
}

// Discover lists the directory and returns one descriptor per script file,
// in listing order.
func (s *ContentsSource) Discover(ctx context.Context) ([]extension.Descriptor, error) {
	endpoint := s.repo.ContentsPath()

	var payload json.RawMessage
	if err := s.client.GetJSON(ctx, endpoint, s.repo.ContentsQuery(), &payload); err != nil {
		return nil, &extension.DiscoveryError{Endpoint: endpoint, Err: err}
	}

	if !isList(payload) {
		return nil, &extension.DiscoveryError{Endpoint: endpoint, Err: errNotList}
	}
	var entries []ContentEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, &extension.DiscoveryError{Endpoint: endpoint, Err: err}
	}

	rawBase := s.repo.RawBase()
	descriptors := make([]extension.Descriptor, 0, len(entries))
	for _, entry := range entries {
		if entry.Type != "file" || !s.isScript(entry.Name) {
			continue
		}
		d, err := s.describe(rawBase, entry.Name)
		if err != nil {
			s.logger.Warn("skipping listing entry", "name", entry.Name, "error", err)
			continue
		}
		descriptors = append(descriptors, d)
	}

	s.logger.Debug("discovered extensions", "endpoint", endpoint, "entries", len(entries), "scripts", len(descriptors))
	return descriptors, nil
}

func (s *ContentsSource) isScript(name string) bool {
	for _, p := range s.patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

func (s *ContentsSource) describe(rawBase, name string) (extension.Descriptor, error) {
	source, err := url.Parse(rawBase + "/" + url.PathEscape(name))
	if err != nil {
		return extension.Descriptor{}, err
	}
	return extension.NewDescriptor(DisplayName(name), source)
}

// DisplayName strips the final extension from a file name
func DisplayName(file string) string {
	return strings.TrimSuffix(file, path.Ext(file))
}

func isList(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

var _ ports.ManifestSource = (*ContentsSource)(nil)
