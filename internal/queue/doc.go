// Package queue persists the run ledger: one row per playlist entry moving
// through the pipeline, with status transitions recorded at every stage
// boundary. SQLite keeps the ledger durable across cron invocations; the
// remote playlist remains the source of truth for membership.
package queue
