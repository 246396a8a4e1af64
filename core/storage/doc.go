// Package storage provides the object storage client used for the feed
// snapshot archive.
//
// Every sync run may persist the raw provider payload under its run id, so a
// problematic merge can be replayed or inspected later. Archiving is optional:
// when disabled, the rest of the system runs without a storage client.
//
// The Client interface wraps the Minio SDK so consumers can be tested against
// the testify mock in core/storage/mocks.
package storage
