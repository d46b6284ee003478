// Package testdoubles provides spies for the logging, metrics and tracing interfaces,
// so tests can assert on the observability output of handlers, stores and transports.
package testdoubles
