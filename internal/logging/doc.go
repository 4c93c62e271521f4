// Package logging wires log/slog with scenebatch's console and JSON handlers
// and the standardized field keys used across the pipeline.
package logging
