// Package logger provides structured logging for rxkit using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. The stream runtime logs subscription lifecycle
// events at debug level through a logger obtained from Get("rx").
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("scheduler")
//	log.Info("loop started", logger.Fields("name", "default"))
package logger
