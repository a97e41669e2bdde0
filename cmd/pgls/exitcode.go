package main

// ExitError wraps an error with the process exit code it should produce
// (spec §6/§7: 0 success, 1 diagnostics found, 2 usage/config error, 70+
// internal error). RunE handlers return one of these instead of exiting
// directly, so Execute's caller controls the actual os.Exit call.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func usageError(err error) error {
	return &ExitError{Code: 2, Err: err}
}

func internalError(err error) error {
	return &ExitError{Code: 70, Err: err}
}

func diagnosticsFoundError() error {
	return &ExitError{Code: 1, Err: errDiagnosticsFound}
}
