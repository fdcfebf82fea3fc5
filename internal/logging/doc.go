// Package logging provides file-based logging with rotation for pdfsift.
// Structured JSON logs are written to ~/.pdfsift/logs/ so indexing runs can
// be diagnosed after the fact without cluttering the CLI output.
package logging
