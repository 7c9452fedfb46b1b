// Package cli turns command-line arguments into a validated app.Config.
// Usage problems are reported as *ExitError carrying the process exit code.
package cli
