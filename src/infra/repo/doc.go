// Package repo contains the Postgres adapter for the contract repository port.
//
// Concurrency notes: contract creation takes a per-car advisory transaction
// lock and re-checks overlap before inserting, and every lifecycle update is
// guarded by the status the contract was loaded with, so concurrent writers
// cannot double-process the same row.
package repo
