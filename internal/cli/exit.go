package cli

// Exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a regression failed
	ExitCommandError = 2 // bad flags, config or connection
)

// ExitError carries the exit code for err.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError wraps err with an exit code.
func NewExitError(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}
