// Package errors provides the classified error primitives used across the landscape builder.
//
// Errors carry a category (config, network, filesystem, build, ...), a severity and a retry
// strategy, so that callers can decide whether a failure aborts a build, degrades a single item
// or is worth retrying.
//
// Example usage:
//
//	err := errors.WrapError(ioErr, errors.CategoryFileSystem, "write dataset").
//		Fatal().
//		WithContext("path", path).
//		Build()
package errors
