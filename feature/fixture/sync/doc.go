// Package sync implements the fixture reconciliation engine.
//
// The engine ingests provider fixture DTOs and merges them into the system of
// record without corrupting in-flight match state, producing an auditable
// change history and tolerating partial failures across a batch.
//
// # Pipeline
//
// A batch flows through: de-duplication by external id, bulk foreign-key
// resolution (one query per reference entity type), then fixed-size chunks.
// Each chunk prefetches its existing rows in one query and processes its
// items concurrently: transform, resolve, validate the state transition,
// diff-or-insert, write, audit, classify.
//
// # Guarantees
//
//   - One item's failure never aborts its chunk or the batch.
//   - An audit entry exists if and only if at least one field changed.
//   - An unchanged fixture is never rewritten (idempotence).
//   - A fixture never moves backward in its lifecycle unless validation is
//     explicitly bypassed, and the bypass itself is audited.
//   - Dry runs compute full results with zero side effects.
package sync
