// Package loader provides the feature registry.
//
// Features implement the Feature interface and are registered on a Manager at
// startup; the Manager wires their routes into the Fiber application.
package loader
