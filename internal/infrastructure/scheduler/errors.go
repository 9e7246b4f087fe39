package scheduler

import "errors"

// ErrSchedulerNotRunning is returned when a manual trigger is requested
// while the scheduler is stopped
var ErrSchedulerNotRunning = errors.New("scheduler is not running")
