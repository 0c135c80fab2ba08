package apphttp

import (
	"context"
)

// GitHub API media type and version sent on every request
const (
	GitHubAccept     = "application/vnd.github+json"
	GitHubAPIVersion = "2022-11-28"
)

// GitHubRawHost serves raw file contents for the token's repositories
const GitHubRawHost = "raw.githubusercontent.com"

// AuthHeaderService emits the headers the repository endpoints expect:
// - Accept and X-GitHub-Api-Version for the contents API
// - Authorization only when a token is configured
type AuthHeaderService struct {
	token     string
	userAgent string
}

func NewAuthHeaderService(token, userAgent string) *AuthHeaderService {
	return &AuthHeaderService{token: token, userAgent: userAgent}
}

func (s *AuthHeaderService) Headers(ctx context.Context) (map[string]string, error) {
	h := map[string]string{
		"Accept":               GitHubAccept,
		"X-GitHub-Api-Version": GitHubAPIVersion,
	}
	if s.userAgent != "" {
		h["User-Agent"] = s.userAgent
	}
	if s.token != "" {
		h["Authorization"] = "Bearer " + s.token
	}
	return h, nil
}
