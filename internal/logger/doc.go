// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a sane console encoder,
//   - a pluggable output sink (the alarm console's prompt-preserving
//     terminal writer in production, a buffer or observer in tests),
//   - context helpers (ToContext/FromContext/WithName/WithKV/WithFields),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// All workers accept a context and extract the logger from it, enabling
// scoped, structured logging throughout the codebase.
package logger
