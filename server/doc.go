// Package server hosts rxkit streams over HTTP using Gin.
//
// The Gin engine is mounted on a ServeMux wrapped with h2c, so clients can
// multiplex several event streams over one HTTP/2 cleartext connection. The
// standard middleware chain (server/middleware) runs at the handler level
// and therefore covers every route, Gin or not.
//
// Built-in endpoints (server/endpoint):
//
//   - /health: component health aggregation
//   - /version: build version information
package server
