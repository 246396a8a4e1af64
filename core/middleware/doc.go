// Package middleware groups the Fiber middleware used by the admin API:
// rayid assigns a correlation id to every request, auth enforces the API key.
package middleware
