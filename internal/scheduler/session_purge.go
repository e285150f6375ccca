package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/financeguardian/dashboard/internal/session"
)

// SessionPurgeJob sweeps expired session rows out of the store. Reads
// already treat expired rows as absent; this job just keeps the table from
// growing without bound.
type SessionPurgeJob struct {
	store *session.Store
	log   zerolog.Logger
}

// NewSessionPurgeJob creates the purge job
func NewSessionPurgeJob(store *session.Store, log zerolog.Logger) *SessionPurgeJob {
	return &SessionPurgeJob{
		store: store,
		log:   log.With().Str("job", "session_purge").Logger(),
	}
}

// Name implements Job
func (j *SessionPurgeJob) Name() string {
	return "session_purge"
}

// Run implements Job
func (j *SessionPurgeJob) Run() error {
	n, err := j.store.PurgeExpired()
	if err != nil {
		return err
	}
	if n > 0 {
		j.log.Info().Int64("purged", n).Msg("Expired sessions removed")
	}
	return nil
}
