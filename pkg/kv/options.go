package kv

import "github.com/rs/zerolog"

// Option configures a DB at Connect time.
type Option func(*DB)

// WithLogger overrides the facade's logger, e.g. to attach request-scoped
// fields in an embedding application.
func WithLogger(logger zerolog.Logger) Option {
	return func(db *DB) {
		db.logger = logger
	}
}

// WithRegisterHealth registers the opened store as a named health
// component (see pkg/metrics) once Connect succeeds, for applications that
// expose /health and /ready alongside the database.
func WithRegisterHealth(componentName string) Option {
	return func(db *DB) {
		db.healthComponent = componentName
	}
}
