// Package exitcode defines the process exit codes of todoctl.
package exitcode

const (
	// Success also covers a declined confirmation and a redirect to an
	// already signed-in session.
	Success = 0

	// UserError is a bad argument, a rejected input or an unknown task.
	UserError = 1

	// AuthError means no usable session: missing, rejected or unverifiable.
	AuthError = 2

	// BackendError is a transport failure or an unexpected server answer.
	BackendError = 3
)
