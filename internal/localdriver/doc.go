// Package localdriver is an in-process implementation of the concept driver
// contract backed by SQLite.
//
// It exists so the behaviour harness can run feature files without a
// database server. The storage layout is deliberately small:
//
//   - databases: one row per named database
//   - thing_types: (database, label) -> kind, labels unique per database
//   - things: iid -> (database, type label)
//
// Root types ("entity", "relation", "attribute") are implicit and never
// stored.
//
// # Transactions
//
// Writes are buffered inside the transaction and applied atomically in a
// single SQL transaction on Commit. Reads see committed rows plus the
// transaction's own buffered writes. Commit closes the transaction, as does
// exceeding Options.TransactionTimeout as measured by the driver clock.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Deleting a database cascades to its types and things
//
// Query results are ordered by rowid so answers come back in insertion order.
package localdriver
