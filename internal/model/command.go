package model

// CommandResult is the outcome of one external process run. Err is set for
// timeout, buffer overflow, non-zero exit, or spawn failure; the runner never
// returns a Go error alongside it.
type CommandResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
	Err      error  `json:"-"`
}

// ContainerExecResult is the outcome of one container exec. ExitCode defaults
// to 1 when the runtime does not report one.
type ContainerExecResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
}
