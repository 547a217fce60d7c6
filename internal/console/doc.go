// Package console is the terminal collaborator service: it serializes all
// output lines, clears the in-progress input line before each one, and
// redraws the prompt with the user's partial input afterwards, so
// asynchronous worker output never eats what the user is typing.
//
// It implements zapcore.WriteSyncer, which lets the zap logger route every
// log line through the same redraw discipline. When stdin is not a
// terminal (pipes, tests) the console degrades to plain line I/O.
package console
