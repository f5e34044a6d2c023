// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols prefixed to one-line command results.
const (
	// Success marks a passing gate or a completed write.
	Success = "✓"

	// Error marks a hard gate failure or a fatal error.
	Error = "✗"

	// Warning marks soft failures that do not gate.
	Warning = "!"

	// Info marks neutral progress lines, such as a watch rerun.
	Info = "i"
)
