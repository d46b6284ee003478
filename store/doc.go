// Package store defines the persistence contract of the rental service:
// the transactional unit of work used by the command handlers (Tx), the read side used
// by queries and the overdue scan, the storage sentinel errors and the consistency
// level that decides whether a read may be served by a replica.
//
// Two engines implement it: postgresengine for production and memoryengine for tests
// and local runs. Both keep the Inventory Ledger rules: a copy is reserved with a
// conditional decrement that never drives the counter below zero, and every reservation
// or release commits or rolls back together with the borrowing or payment row it belongs to.
package store
