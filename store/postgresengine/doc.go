// Package postgresengine implements the rental store on PostgreSQL.
//
// Statements are built with goqu and executed through one of three interchangeable
// adapters (pgx.Pool, sql.DB, sqlx.DB). Inventory changes are conditional updates
// (UPDATE ... SET inventory = inventory - 1 WHERE inventory > 0) checked by their affected
// row count, never a read-then-write. The schema backs the application checks with a
// partial unique index (one open borrowing per user and book) and CHECK constraints
// (date ordering, non-negative inventory); their violations are translated to the core
// sentinel errors so callers never see a raw driver error for a business rule.
//
// Schema migrations are embedded and applied with golang-migrate, see Migrate.
package postgresengine
