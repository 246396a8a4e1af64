// Package models defines the fixture domain: the persisted Fixture row and
// its reference entities (League, Season, Team), the immutable AuditEntry,
// the provider-facing FixtureDTO, and the match lifecycle state machine.
package models
