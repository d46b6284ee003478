// Package core contains the domain model of the library rental service:
// books with an available-copy counter, borrowings with their open/closed lifecycle,
// payments for rental fees and late-return fines, and the notification events
// emitted when any of these change.
//
// Everything in this package is free of I/O. Fee calculations, date arithmetic and
// the DecisionResult type used by the Decide functions of the feature slices live here.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
