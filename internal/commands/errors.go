package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"todoctl/internal/exitcode"
	"todoctl/internal/service"
)

// ErrIDRequired indicates no task id was provided.
var ErrIDRequired = errors.New("task id required")

// ParseID parses the task id from the first positional argument.
func ParseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, ErrIDRequired
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, nil
}

// idArg parses the id argument and reports a usage error.
func idArg(args []string, errOut io.Writer) (int64, bool) {
	id, err := ParseID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return 0, false
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return 0, false
	}
	return id, true
}

// report prints err and maps it to an exit code.
func report(errOut io.Writer, id int64, err error) int {
	var httpErr *service.HTTPError
	switch {
	case service.IsValidation(err):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case service.IsNotFound(err):
		fmt.Fprintf(errOut, "error: task not found: %d\n", id)
		return exitcode.UserError
	case service.IsUnauthorized(err):
		fmt.Fprintln(errOut, "error: session rejected (run: todoctl login)")
		return exitcode.AuthError
	case service.IsNetwork(err):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	case errors.As(err, &httpErr):
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.BackendError
}
