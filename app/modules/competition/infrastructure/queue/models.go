package competitionqueue

import "time"

// QueueName is the dedicated River queue for cycle jobs.
const QueueName = "competition"

// CloseCycleJob closes the active week that ended by AsOf. A zero AsOf means
// the date at which the job runs.
type CloseCycleJob struct {
	AsOf time.Time `json:"as_of,omitzero"`
}

// Kind returns the job type identifier for River
func (CloseCycleJob) Kind() string { return "competition_close_cycle" }

// OpenCycleJob opens the week following the latest one.
type OpenCycleJob struct {
	AsOf time.Time `json:"as_of,omitzero"`
}

// Kind returns the job type identifier for River
func (OpenCycleJob) Kind() string { return "competition_open_cycle" }

// JobInfo represents information about a scheduled job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
