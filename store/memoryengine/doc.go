// Package memoryengine is an in-process implementation of the rental store with the same
// transactional semantics as postgresengine. It backs the feature tests and local runs without a database.
//
// Transactions are serialized: InTx holds the engine's lock for the whole body and restores
// a snapshot of the state when the body fails.
package memoryengine
