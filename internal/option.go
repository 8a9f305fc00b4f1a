package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	version string
	force   bool
	limit   int
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithForce makes ingestion treat every document as stale.
func WithForce(force bool) Option {
	return func(a *application) {
		a.force = force
	}
}

// WithLimit caps how many cached notes the classify command processes.
// Zero keeps the configured limit.
func WithLimit(n int) Option {
	return func(a *application) {
		a.limit = n
	}
}
