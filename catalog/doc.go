// Package catalog holds the demo data and the named example pipelines
// served by cmd/rxdemo.
//
// Service plays the role of a remote reactive service: it hands out the
// crew roster, a delayed variant of it, and a short number sequence.
// Catalog composes those into one pipeline per example:
//
//	cat := catalog.New(catalog.NewService())
//	s, err := cat.Stream("zip")
package catalog
