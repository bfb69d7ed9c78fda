// Package component defines the lifecycle interface shared by long-lived
// rxkit parts (the scheduler event loop, the demo HTTP server) and a
// Registry that starts them in order and stops them in reverse.
package component
