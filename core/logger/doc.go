// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments
// (development vs production) and integrates with the Fiber web framework.
//
// # Correlation
//
// Two helpers attach correlation fields to a logger:
//
//   - WithRayID extracts the RayID (request ID) from a Fiber context so all
//     logs belonging to one HTTP request share a ray_id field.
//   - WithPass tags a logger with the identifier of a library sync pass so
//     every step of the pass can be traced through the log stream.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
package logger
