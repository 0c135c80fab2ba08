package ports

// Logger is the structured logger used across the loader. Arguments after
// the message are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// Named returns a child logger whose name is suffixed with name
	Named(name string) Logger
}
