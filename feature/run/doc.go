// Package run tracks sync run lifecycles: one batch_runs row per run with
// aggregate counters, one batch_items row per fixture outcome.
package run
