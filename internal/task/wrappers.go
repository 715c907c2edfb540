package task

import (
	"reflect"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// JobWrapper is an alias for cron.JobWrapper.
type JobWrapper = cron.JobWrapper

// NewLoggingWrapper logs each job run with a unique execution id and its
// duration.
func NewLoggingWrapper(logger zerolog.Logger) JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			jobLogger := logger.With().
				Str("job_name", jobName(j)).
				Str("execution_id", uuid.New().String()[:8]).
				Logger()

			start := time.Now()
			jobLogger.Info().Msg("job started")

			j.Run()

			jobLogger.Info().
				Dur("duration", time.Since(start)).
				Msg("job finished")
		})
	}
}

// NewPanicRecoveryWrapper keeps a panicking job from taking the process down.
func NewPanicRecoveryWrapper(logger zerolog.Logger) JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error().
						Str("job_name", jobName(j)).
						Interface("panic", r).
						Str("stack", string(debug.Stack())).
						Msg("job panicked")
				}
			}()

			j.Run()
		})
	}
}

// jobName prefers a job's own Name() method, falling back to its type name.
func jobName(j cron.Job) string {
	if named, ok := j.(interface{ Name() string }); ok {
		return named.Name()
	}
	t := reflect.TypeOf(j)
	if t.Kind() == reflect.Ptr {
		return t.Elem().String()
	}
	return t.String()
}
