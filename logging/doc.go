// Package logging provides a tiny abstraction over slog so downstream code can
// depend on a minimal interface (Logger) while allowing users to plug any
// structured logger. The agent loop logs through this interface only; the
// NoOpLogger keeps library defaults silent.
package logging
