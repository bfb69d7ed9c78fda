// Package errors provides the structured error type used across rxkit.
//
// Every error a stream delivers through OnError is either a caller-supplied
// error passed through unchanged, or an *AppError carrying a machine-readable
// code (TRANSFORM_FAILED, TYPE_MISMATCH, ...) with the original failure as its
// cause. Use AsAppError / HasCode to inspect them.
package errors
