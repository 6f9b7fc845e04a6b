package domain

// LogOutcome describes what happened to a best-effort log write.
type LogOutcome string

// Log write outcomes.
const (
	OutcomeLogged             LogOutcome = "logged"
	OutcomeSessionUnavailable LogOutcome = "session_unavailable"
	OutcomeAllocationFailed   LogOutcome = "allocation_failed"
	OutcomeInsertFailed       LogOutcome = "insert_failed"
	OutcomeInvalidInput       LogOutcome = "invalid_input"
)

// LogResult is the typed result of a log write. ID is set only when the row
// was appended; Err carries the reason for any other outcome.
type LogResult struct {
	ID      *int64
	Outcome LogOutcome
	Err     error
}

// Logged reports whether the row was appended.
func (r LogResult) Logged() bool {
	return r.Outcome == OutcomeLogged
}

// Logged builds a successful LogResult for id.
func Logged(id int64) LogResult {
	return LogResult{ID: &id, Outcome: OutcomeLogged}
}

// Dropped builds a LogResult for a write that did not happen.
func Dropped(outcome LogOutcome, err error) LogResult {
	return LogResult{Outcome: outcome, Err: err}
}
