// Package version reports build metadata for rxkit binaries.
//
// Version, commit, branch, and build time are set at compile time via
// -ldflags; anything left empty is filled from the Go build info:
//
//	go build -ldflags "-X github.com/kbukum/rxkit/version.Version=1.0.0" ./cmd/rxdemo
package version
