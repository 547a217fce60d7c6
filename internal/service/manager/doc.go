// Package manager wires the alarm console together: it loads the
// configuration, attaches the zap logger to the prompt-preserving console
// sink, starts the dispatcher, the five handlers, and the input loop
// under an errgroup, and coordinates shutdown on quit/exit, end of input,
// or signal-driven context cancellation.
package manager
