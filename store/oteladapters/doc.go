// Package oteladapters provides OpenTelemetry implementations of the store observability interfaces.
//
// The same adapters serve the SQL engine and the command and query handler wrappers, so one
// MeterProvider and one TracerProvider see every layer of a request.
package oteladapters
