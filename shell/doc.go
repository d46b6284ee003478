// Package shell is the imperative shell around the functional core of the rental engine.
//
// It holds what every feature slice shares: the command and query contracts, the retry policy for
// concurrency conflicts, the handler result metadata, the observability helpers, and the mapping
// between domain events and the messages handed to the notification transport.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
