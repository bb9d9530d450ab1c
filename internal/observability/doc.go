// Package observability provides structured logging and tracing for the
// response retrieval service.
//
// This package implements:
//   - zap loggers built from configuration, with an optional rotating file
//   - OpenTelemetry tracing over OTLP/HTTP, disabled unless configured
//
// Pipeline stages open spans through Tracer so a batch can be followed
// from the HTTP handler down to sampling.
package observability
