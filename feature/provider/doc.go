// Package provider is the black-box boundary toward the upstream fixture
// feed. It owns HTTP, retry policy, and payload decoding; everything past this
// package works with DTOs only.
package provider
