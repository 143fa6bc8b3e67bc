// Package testdoubles provides spies for the dependency-free observability interfaces.
//
// The spies record every call so tests can assert which metrics, spans and log records
// an operation produced without wiring a real telemetry backend.
package testdoubles
