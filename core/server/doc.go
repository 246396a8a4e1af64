// Package server holds the HTTP server configuration.
//
// The configuration includes the listen port, the API key protecting the admin
// surface, and the write source marker that distinguishes automated job writes
// from manual operator writes in the audit trail.
package server
