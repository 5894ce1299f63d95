package types

// FileError is a per-file failure recorded during execution.
type FileError struct {
	Key    Key    `json:"-"`
	Path   string `json:"path"`
	Action Action `json:"action"`
	Err    error  `json:"-"`
	// Message is Err rendered, for machine-readable output.
	Message string `json:"error"`
}

func (e FileError) Error() string {
	return e.Key.String() + ": " + e.Message
}

func (e FileError) Unwrap() error {
	return e.Err
}

// DeployResult summarizes one pass of the engine.
type DeployResult struct {
	DryRun  bool        `json:"dry_run"`
	Written []string    `json:"written"`
	Skipped []string    `json:"skipped"`
	Deleted []string    `json:"deleted"`
	Errors  []FileError `json:"errors"`
	Counts  PlanCounts  `json:"counts"`
	// Plan is the resolved plan the result was produced from.
	Plan *Plan `json:"-"`
}

// HasErrors reports whether any file operation failed.
func (r *DeployResult) HasErrors() bool {
	return len(r.Errors) > 0
}
