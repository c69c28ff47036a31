package scrapejob

import "fmt"

// TransientError wraps a network failure, 5xx, or 429 that survived the retry
// budget. The wrapped error is the one from the final attempt.
type TransientError struct {
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("scrape api transient failure after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError is a non-retryable client error (4xx other than 429).
type PermanentError struct {
	StatusCode int
	Body       string
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("scrape api error: status %d: %s", e.StatusCode, e.Body)
}

// JobFailedError signals a terminal, non-success job outcome.
type JobFailedError struct {
	RunID  string
	Status Status
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("job run %s finished with status %s", e.RunID, e.Status)
}

// JobTimeoutError signals that a job did not reach a terminal status before
// the caller's wait budget elapsed.
type JobTimeoutError struct {
	RunID   string
	MaxWait string
}

func (e *JobTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for job run %s after %s", e.RunID, e.MaxWait)
}
