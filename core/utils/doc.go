// Package utils contains small conversion helpers shared across packages.
package utils
