package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	out    io.Writer
	errOut io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput redirects the report streams, used by tests.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *application) {
		a.out = out
		a.errOut = errOut
	}
}
