package httpdomain

// Endpoint describes one HTTP target the loader talks to.
type Endpoint struct {
	BaseURL   string
	UserAgent string
}
